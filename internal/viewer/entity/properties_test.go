package entity

import "testing"

func TestPropertyMap(t *testing.T) {
	var nilMap *PropertyMap
	if got := nilMap.Get("/a"); got != DefaultProperties {
		t.Errorf("nil map Get = %+v, want defaults", got)
	}

	m := NewPropertyMap(Properties{Visible: true, Interactive: false})
	if got := m.Get("/a"); got.Interactive {
		t.Errorf("default Interactive = true, want false")
	}

	m.Set("/a", Properties{Visible: false, Interactive: true})
	got := m.Get("/a")
	if got.Visible || !got.Interactive {
		t.Errorf("override = %+v", got)
	}
	if m.Get("/a/b") != (Properties{Visible: true, Interactive: false}) {
		t.Error("overrides must not be inherited by children")
	}
}
