package label

import (
	"regexp"
	"sync"
	"testing"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantCode  string
		wantModel string
	}{
		{
			name:     "genuine parts label",
			input:    "C.D.I\n311000-1360-02TY0000\nGENUINE PARTS",
			wantName: "C.D.I",
			wantCode: "311000-1360-02TY0000",
		},
		{
			name:      "model line only",
			input:     "LECHUZA II 200CC",
			wantModel: "lechuza2",
		},
		{
			name:      "full label",
			input:     "GENUINE PARTS\nAGUILA 150CC\nBOMBA DE ACEITE\n16100-1043",
			wantName:  "BOMBA DE ACEITE",
			wantCode:  "16100-1043",
			wantModel: "aguila",
		},
		{
			name:      "accented marker",
			input:     "Bujía\nTUCÁN 110CC",
			wantName:  "Bujía",
			wantModel: "tucan",
		},
		{
			name:      "lowercase marker",
			input:     "Cadena\nlechuza 200cc",
			wantName:  "Cadena",
			wantModel: "lechuza",
		},
		{
			name:     "relaxed tier accepts generic brand words",
			input:    "BRAKE PARTS\n12-34",
			wantName: "BRAKE PARTS",
			wantCode: "12-34",
		},
		{
			name:     "last resort accepts long lines",
			input:    "BUJIA PARA MOTOR CUATRO TIEMPOS",
			wantName: "BUJIA PARA MOTOR CUATRO TIEMPOS",
		},
		{
			name:     "all lines are codes",
			input:    "311000-1360\n1234567\nABCDEFGH12",
			wantCode: "311000-1360",
		},
		{
			name:      "all lines are markers",
			input:     "AGUILA\nLECHUZA\nCONDOR 150",
			wantModel: "aguila",
		},
		{
			name:     "code recorded verbatim",
			input:    "ab12cd34ef\nPiñón",
			wantName: "Piñón",
			wantCode: "ab12cd34ef",
		},
		{
			name:     "long words are treated as codes",
			input:    "ALTERNADOR\nEje",
			wantName: "Eje",
			wantCode: "ALTERNADOR",
		},
		{
			name:     "single characters dropped",
			input:    "a\n \nb\nFiltro\n",
			wantName: "Filtro",
		},
		{
			name:     "windows line endings",
			input:    "Filtro\r\n12-34\r\n",
			wantName: "Filtro",
			wantCode: "12-34",
		},
		{
			name:     "invalid utf-8 stripped",
			input:    "\xff\xfe\nBuj\xffía",
			wantName: "Bujía",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.ModelID != tt.wantModel {
				t.Errorf("ModelID = %q, want %q", got.ModelID, tt.wantModel)
			}
			if got.RawText != tt.input {
				t.Errorf("RawText = %q, want original input", got.RawText)
			}
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n", " \t\n x \n", "\xff\xfe\n\x80"} {
		got := Parse(input)
		if !got.Empty() {
			t.Errorf("Parse(%q) expected no lines, got %v", input, got.Lines)
		}
		if got.Name != "" || got.Code != "" || got.ModelID != "" {
			t.Errorf("Parse(%q) expected empty candidates, got %+v", input, got)
		}
	}
}

func TestMarkerSpecificityIgnoresConfiguredOrder(t *testing.T) {
	rules := DefaultRules()
	rules.Markers = []Marker{
		{Text: "LECHUZA", ModelID: "lechuza"},
		{Text: "lechuza ii", ModelID: "lechuza2"},
	}
	p := New(rules)

	if got := p.Parse("LECHUZA II 200CC").ModelID; got != "lechuza2" {
		t.Errorf("expected lechuza2, got %q", got)
	}
	if got := p.Parse("LECHUZA 200CC").ModelID; got != "lechuza" {
		t.Errorf("expected lechuza, got %q", got)
	}
}

func TestFirstMarkerLineWins(t *testing.T) {
	got := Parse("Manubrio\nCANARIO 150CC\nLECHUZA II 200CC")
	if got.ModelID != "canario" {
		t.Errorf("expected canario, got %q", got.ModelID)
	}
}

func TestModelDetectionDisabled(t *testing.T) {
	rules := DefaultRules()
	rules.DetectModel = false
	p := New(rules)

	got := p.Parse("Bujía\nLECHUZA II 200CC")
	if got.ModelID != "" {
		t.Errorf("expected no model, got %q", got.ModelID)
	}
	if got.Name != "Bujía" {
		t.Errorf("expected name Bujía, got %q", got.Name)
	}
}

func TestCustomCodePatterns(t *testing.T) {
	rules := DefaultRules()
	rules.CodePatterns = []*regexp.Regexp{regexp.MustCompile(`^REF `)}
	p := New(rules)

	got := p.Parse("16100-1043\nREF 77")
	if got.Code != "REF 77" {
		t.Errorf("expected code 'REF 77', got %q", got.Code)
	}
	if got.Name != "16100-1043" {
		t.Errorf("expected the numeric line to become the name, got %q", got.Name)
	}
}

func TestProbableLines(t *testing.T) {
	got := Parse("Filtro\n311000-1360\nBUJIA PARA MOTOR CUATRO TIEMPOS")
	want := []Line{
		{Text: "Filtro", Probable: true},
		{Text: "311000-1360", Probable: false},
		{Text: "BUJIA PARA MOTOR CUATRO TIEMPOS", Probable: false},
	}

	if len(got.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(got.Lines))
	}
	for i := range want {
		if got.Lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got.Lines[i], want[i])
		}
	}
}

func TestHyphenatedCodeIsNeverTheName(t *testing.T) {
	plain := []string{"C.D.I", "Filtro aire", "GENUINE PARTS", "AGUILA 150CC", "x", "   ", "Bujía"}
	hyphenated := []string{"12-34", "311000-1360-02TY0000", "A 9-9"}
	pool := append(append([]string{}, plain...), hyphenated...)

	for _, a := range pool {
		for _, b := range pool {
			for _, c := range pool {
				lines := []string{a, b, c}
				want := ""
				for _, l := range Lines(a+"\n"+b+"\n"+c, 2) {
					if reHyphenated.MatchString(l) {
						want = l
						break
					}
				}
				if want == "" {
					continue
				}

				got := Parse(a + "\n" + b + "\n" + c)
				if got.Code != want {
					t.Fatalf("%q: Code = %q, want %q", lines, got.Code, want)
				}
				if got.Name == want {
					t.Fatalf("%q: name equals the code line %q", lines, want)
				}
			}
		}
	}
}

func TestMarkerOnlyInputHasNoName(t *testing.T) {
	pool := []string{"AGUILA", "LECHUZA II 200CC", "GENUINE PARTS", "TUCAN", "canario", "Cóndor 150cc"}

	for _, a := range pool {
		for _, b := range pool {
			if got := Parse(a + "\n" + b); got.Name != "" {
				t.Errorf("Parse(%q, %q) Name = %q, want none", a, b, got.Name)
			}
		}
	}
}

func TestParseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Parse("C.D.I\n311000-1360-02TY0000\nGENUINE PARTS")
			if got.Name != "C.D.I" {
				t.Errorf("unexpected name %q", got.Name)
			}
		}()
	}
	wg.Wait()
}
