package models

import "testing"

func TestDefaultTheme(t *testing.T) {
	d := DefaultTheme()
	if d.ID != "default" {
		t.Errorf("ID = %q, want %q", d.ID, "default")
	}
	if d.PrimaryColor != "152 45% 28%" || d.AccentColor != "45 90% 50%" || d.SidebarColor != "152 35% 15%" {
		t.Errorf("default colors = %+v", d.Colors())
	}
}

func TestMerge(t *testing.T) {
	base := DefaultTheme()
	base.CustomCSS = ".a{}"

	got := base.Merge(ThemePatch{
		AppName:   String("Acme"),
		CustomCSS: String(""),
	})

	if got.AppName != "Acme" {
		t.Errorf("AppName = %q, want Acme", got.AppName)
	}
	if got.CustomCSS != "" {
		t.Errorf("CustomCSS = %q, want cleared", got.CustomCSS)
	}
	if got.PrimaryColor != base.PrimaryColor {
		t.Errorf("PrimaryColor changed to %q", got.PrimaryColor)
	}
	if base.AppName != DefaultAppName {
		t.Error("Merge mutated the receiver")
	}
}

func TestThemePatch_IsEmpty(t *testing.T) {
	if !(ThemePatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	if (ThemePatch{LogoURL: String("")}).IsEmpty() {
		t.Error("patch clearing logo should not be empty")
	}
}

func TestColorSet_Complete(t *testing.T) {
	tests := []struct {
		name string
		set  ColorSet
		want bool
	}{
		{"all set", DefaultColors(), true},
		{"missing accent", ColorSet{Primary: "1 1% 1%", Sidebar: "1 1% 1%"}, false},
		{"empty", ColorSet{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.set.Complete(); got != tc.want {
				t.Errorf("Complete() = %v, want %v", got, tc.want)
			}
		})
	}
}
