package patterns

import "testing"

func TestSharedFormats(t *testing.T) {
	c, err := Shared()
	if err != nil {
		t.Fatalf("Shared() error: %v", err)
	}

	tests := []struct {
		format string
		text   string
		want   map[string]string // nil means no match
	}{
		{
			FormatAssetLine,
			`LONG BEACH, [Long Beach|USLGB|美西], 长滩, "LONG BEACH,CA(长滩,加利福尼亚州)"`,
			map[string]string{
				"source_a": "LONG BEACH",
				"bracket":  "Long Beach|USLGB|美西",
				"source_b": "长滩",
				"source_c": `"LONG BEACH,CA(长滩,加利福尼亚州)"`,
			},
		},
		{
			FormatAssetLine,
			`[Rotterdam|NLRTM|欧基港]`,
			map[string]string{"source_a": "", "bracket": "Rotterdam|NLRTM|欧基港"},
		},
		{FormatAssetLine, `LOS ANGELES, 洛杉矶`, nil},
		{
			FormatDisplay,
			`[Long Beach|USLGB|美西]`,
			map[string]string{"name": "Long Beach", "code": "USLGB", "region": "美西"},
		},
		{FormatDisplay, `[Long Beach|USLGB]`, nil},
		{FormatCodeLike, `USLGB`, map[string]string{"code": "USLGB"}},
		{FormatCodeLike, `LONG BEACH`, nil},
		{
			FormatDirectionSuffix,
			`PORT KELANG N`,
			map[string]string{"stem": "PORT KELANG", "dir": "N"},
		},
		{
			FormatDirectionSuffix,
			`PORT KELANG NORTH`,
			map[string]string{"stem": "PORT KELANG", "dir": "NORTH"},
		},
		{FormatDirectionSuffix, `PORTKELANGN`, nil},
		{
			FormatDirectionSuffixCJK,
			`巴生北`,
			map[string]string{"stem": "巴生", "dir": "北"},
		},
		{FormatDirectionSuffixCJK, `西`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.format+" "+tt.text, func(t *testing.T) {
			m := c.ParseFormat(tt.format, tt.text)
			if tt.want == nil {
				if m != nil {
					t.Fatalf("expected no match, got %v", m.Captures)
				}
				return
			}
			if m == nil {
				t.Fatal("expected a match")
			}
			for k, v := range tt.want {
				if got := m.Captures[k]; got != v {
					t.Errorf("capture %s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestCompilerLocalOverride(t *testing.T) {
	c := NewCompiler([]Format{{
		Name:    "code",
		Pattern: `^(?P<code>{CODE})$`,
	}}, map[string]string{"CODE": `[A-Z]{5}`})
	if err := c.Compile(); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if m := c.Parse("USLGB"); m == nil || m.FormatName != "code" {
		t.Errorf("Parse(USLGB) = %v, want code match", m)
	}
	if m := c.Parse("US1"); m != nil {
		t.Errorf("Parse(US1) = %v, want no match with the local CODE pattern", m.Captures)
	}
	if got := c.ParseFormat("missing", "USLGB"); got != nil {
		t.Errorf("ParseFormat(missing) = %v, want nil", got)
	}
}

func TestMatchGetCapture(t *testing.T) {
	m := &Match{Captures: map[string]string{"code": "USLGB", "empty": ""}}
	if got := m.GetCapture("code", "X"); got != "USLGB" {
		t.Errorf("GetCapture(code) = %q", got)
	}
	if got := m.GetCapture("empty", "X"); got != "X" {
		t.Errorf("GetCapture(empty) = %q, want default", got)
	}
	if got := m.GetCapture("missing", "X"); got != "X" {
		t.Errorf("GetCapture(missing) = %q, want default", got)
	}
}
