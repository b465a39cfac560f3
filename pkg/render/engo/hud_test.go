package engo

import "testing"

func TestHUDSystem_Update(t *testing.T) {
	paused := false
	hud := NewHUDSystem("Ringbreak", func() bool { return paused })
	var titles []string
	hud.setTitle = func(s string) { titles = append(titles, s) }

	hud.Update(0)
	if len(titles) != 0 {
		t.Fatalf("no title before the first snapshot, got %v", titles)
	}

	hud.UpdateState(newTestSimulation(t).State())
	hud.Update(0)
	hud.Update(0)
	want := "Ringbreak  t=0.0s  rings 100  Red 0  Blue 0"
	if len(titles) != 1 || titles[0] != want {
		t.Fatalf("titles = %q, want [%q]", titles, want)
	}

	paused = true
	hud.Update(0)
	if len(titles) != 2 || titles[1] != want+"  paused" {
		t.Errorf("expected paused title, got %q", titles)
	}
}
