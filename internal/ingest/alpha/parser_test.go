package alpha

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseCompleteSessions verifies parsing a multi-session export with
// exercises, warmups and working sets.
func TestParseCompleteSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	// First session: all 6 exercises
	s1 := sessions[0]
	if s1.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s1.Name = %q", s1.Name)
	}
	if s1.DurationMinutes == nil || *s1.DurationMinutes != 62 {
		t.Errorf("s1.DurationMinutes = %v, want 62", s1.DurationMinutes)
	}
	if want := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC); !s1.Started.Equal(want) {
		t.Errorf("s1.Started = %v, want %v", s1.Started, want)
	}
	if len(s1.Exercises) != 6 {
		t.Fatalf("s1 exercises = %d, want 6", len(s1.Exercises))
	}

	// Exercise 1: Hack Squats: 2 warmups + 3 working sets, single-word equipment
	ex1 := s1.Exercises[0]
	if ex1.Name != "Hack Squats" {
		t.Errorf("ex1.Name = %q, want Hack Squats", ex1.Name)
	}
	if ex1.Equipment != "Machine" {
		t.Errorf("ex1.Equipment = %q, want Machine", ex1.Equipment)
	}
	if ex1.TargetReps != 8 {
		t.Errorf("ex1.TargetReps = %d, want 8", ex1.TargetReps)
	}
	if len(ex1.Warmups) != 2 || len(ex1.Sets) != 3 {
		t.Errorf("ex1 warmups/sets = %d/%d, want 2/3", len(ex1.Warmups), len(ex1.Sets))
	}

	// Exercise 2: Sumo Squats: multi-word equipment ("Smith machine")
	ex2 := s1.Exercises[1]
	if ex2.Name != "Sumo Squats" {
		t.Errorf("ex2.Name = %q, want Sumo Squats", ex2.Name)
	}
	if ex2.Equipment != "Smith machine" {
		t.Errorf("ex2.Equipment = %q, want Smith machine", ex2.Equipment)
	}
	if len(ex2.Warmups) != 1 || len(ex2.Sets) != 2 {
		t.Errorf("ex2 warmups/sets = %d/%d, want 1/2", len(ex2.Warmups), len(ex2.Sets))
	}

	// Exercise 3: Hyperextensions: multi-word name, bodyweight equipment
	ex3 := s1.Exercises[2]
	if ex3.Name != "Hyperextensions on Roman Chair" {
		t.Errorf("ex3.Name = %q, want Hyperextensions on Roman Chair", ex3.Name)
	}
	if ex3.Equipment != "Bodyweight" {
		t.Errorf("ex3.Equipment = %q, want Bodyweight", ex3.Equipment)
	}

	// Exercise 4: Reverse Lunges: no warmups
	ex4 := s1.Exercises[3]
	if ex4.Name != "Reverse Lunges" {
		t.Errorf("ex4.Name = %q, want Reverse Lunges", ex4.Name)
	}
	if ex4.Equipment != "Dumbbells" {
		t.Errorf("ex4.Equipment = %q, want Dumbbells", ex4.Equipment)
	}
	if len(ex4.Warmups) != 0 || len(ex4.Sets) != 3 {
		t.Errorf("ex4 warmups/sets = %d/%d, want 0/3", len(ex4.Warmups), len(ex4.Sets))
	}

	// Exercise 5: Standing Calf Raises: warmup with European decimal weight
	ex5 := s1.Exercises[4]
	if ex5.Name != "Standing Calf Raises" {
		t.Errorf("ex5.Name = %q, want Standing Calf Raises", ex5.Name)
	}
	if ex5.Equipment != "Machine" {
		t.Errorf("ex5.Equipment = %q, want Machine", ex5.Equipment)
	}
	if len(ex5.Sets) != 3 || ex5.Sets[0].Weight != 157.5 {
		t.Errorf("ex5 sets = %+v, want 3 at 157.5", ex5.Sets)
	}

	// Exercise 6: Hanging Leg Raises: modifier "· 2 dropsets", no warmups, bodyweight
	ex6 := s1.Exercises[5]
	if ex6.Name != "Hanging Leg Raises" {
		t.Errorf("ex6.Name = %q, want Hanging Leg Raises", ex6.Name)
	}
	if ex6.Equipment != "Bodyweight" {
		t.Errorf("ex6.Equipment = %q, want Bodyweight", ex6.Equipment)
	}
	if ex6.TargetReps != 12 {
		t.Errorf("ex6.TargetReps = %d, want 12", ex6.TargetReps)
	}
	if len(ex6.Sets) != 3 || !ex6.Sets[0].BodyweightPlus {
		t.Errorf("ex6 sets = %+v, want 3 bodyweight sets", ex6.Sets)
	}

	// Second session
	s2 := sessions[1]
	if s2.Name != "Push · Day 1 · Week 4 · Push-Pull-Legs" {
		t.Errorf("s2.Name = %q", s2.Name)
	}
}

// TestParseDecimal verifies decimal commas, including half RIR values.
func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"102,5", 102.5, true},
		{"0,5", 0.5, true},
		{"100", 100, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseDecimal(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseDecimal(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// TestBodyweightPlus verifies the +N notation, where +0 is bodyweight only.
func TestBodyweightPlus(t *testing.T) {
	for in, want := range map[string]float64{"+35": 35, "+0": 0, "+2,5": 2.5} {
		weight, bw, ok := parseWeight(in)
		if !ok || !bw || weight != want {
			t.Errorf("parseWeight(%q) = %v, %v, %v; want %v, true, true", in, weight, bw, ok, want)
		}
	}
	if _, bw, _ := parseWeight("60"); bw {
		t.Error("plain weight flagged as bodyweight plus")
	}
}

// TestParseDuration verifies the hour and minute forms.
func TestParseDuration(t *testing.T) {
	tests := map[string]int{"1:02 hr": 62, "0:45 hr": 45, "45 min": 45}
	for in, want := range tests {
		got := parseDuration(in)
		if got == nil || *got != want {
			t.Errorf("parseDuration(%q) = %v, want %d", in, got, want)
		}
	}
	if got := parseDuration("long"); got != nil {
		t.Errorf("parseDuration(long) = %d, want nil", *got)
	}
}

// TestWarmupParsing verifies warmup extraction from the exercise header's
// second field.
func TestWarmupParsing(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warmup sets = %d, want 2", len(sets))
	}
	if sets[0].Weight != 37.5 || sets[0].Reps != 9 {
		t.Errorf("wu1 = %+v", sets[0])
	}
	if sets[1].Weight != 72.5 {
		t.Errorf("wu2 weight = %f, want 72.5", sets[1].Weight)
	}

	bw := parseWarmups("WU1 · +0 kg · 8 reps")
	if len(bw) != 1 || !bw[0].BodyweightPlus {
		t.Errorf("bodyweight warmup = %+v", bw)
	}
}

// TestMissingRIR verifies an empty RIR column leaves RIR unset.
func TestMissingRIR(t *testing.T) {
	in := "\"Pull\";\"2026-02-20 18:00 h\";\"0:50 hr\"\n\"1. Barbell Row · Barbell · 8 reps\"\n#;KG;REPS;RIR\n1;80;8;\n"
	sessions, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	set := sessions[0].Exercises[0].Sets[0]
	if set.RIR != nil {
		t.Errorf("RIR = %v, want nil", *set.RIR)
	}
	if set.Weight != 80 || set.Reps != 8 {
		t.Errorf("set = %+v", set)
	}
}

// TestParseErrors verifies structural errors report their line.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"exercise without session", "\"1. Squat · Barbell · 5 reps\"\n", 1},
		{"set without exercise", "\"Legs\";\"2026-02-19 4:54 h\";\"1:02 hr\"\n1;100;5;1\n", 2},
		{"bad weight", "\"Legs\";\"2026-02-19 4:54 h\";\"1:02 hr\"\n\"1. Squat · Barbell · 5 reps\"\n1;heavy;5;1\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}
