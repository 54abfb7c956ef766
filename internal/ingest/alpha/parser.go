// Package alpha imports workout history exported by the Alpha Progression
// app as semicolon separated text.
package alpha

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setRowRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.*)$`)

	// WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	// 1:02 hr, 45 min
	hoursRe   = regexp.MustCompile(`^(\d+):(\d{2})\s*hr?$`)
	minutesRe = regexp.MustCompile(`^(\d+)\s*min$`)
)

const columnHeader = "#;KG;REPS;RIR"

// Session is one exported workout. Started is wall-clock time without a
// zone.
type Session struct {
	Name            string
	Started         time.Time
	DurationMinutes *int
	Exercises       []Exercise
}

// Exercise is one numbered exercise block of a session.
type Exercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Warmups    []Set
	Sets       []Set
}

// Set is a single logged set. Weight is the added load for bodyweight
// exercises.
type Set struct {
	Number         int
	Weight         float64
	BodyweightPlus bool
	Reps           int
	RIR            *float64
}

// ParseError reports an export that does not follow the expected layout.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("alpha export line %d: %s", e.Line, e.Reason)
}

type parser struct {
	sessions []Session
	session  *Session
	exercise *Exercise
}

func (p *parser) flushExercise() {
	if p.exercise != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
		p.exercise = nil
	}
}

func (p *parser) flushSession() {
	if p.session == nil {
		return
	}
	p.flushExercise()
	p.sessions = append(p.sessions, *p.session)
	p.session = nil
}

// Parse reads an export. Blank lines separate sessions; unrecognised lines
// such as notes are ignored.
func Parse(r io.Reader) ([]Session, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			p.flushSession()

		case line == columnHeader:

		case sessionHeaderRe.MatchString(line):
			m := sessionHeaderRe.FindStringSubmatch(line)
			p.flushSession()
			started, err := parseStarted(m[2])
			if err != nil {
				return nil, &ParseError{Line: lineNo, Reason: err.Error()}
			}
			p.session = &Session{
				Name:            m[1],
				Started:         started,
				DurationMinutes: parseDuration(m[3]),
			}

		case exerciseHeaderRe.MatchString(line):
			m := exerciseHeaderRe.FindStringSubmatch(line)
			if p.session == nil {
				return nil, &ParseError{Line: lineNo, Reason: "exercise before any session header"}
			}
			p.flushExercise()
			num, _ := strconv.Atoi(m[1])
			target, _ := strconv.Atoi(m[4])
			p.exercise = &Exercise{
				Number:     num,
				Name:       strings.TrimSpace(m[2]),
				Equipment:  strings.TrimSpace(m[3]),
				TargetReps: target,
				Warmups:    parseWarmups(m[6]),
			}

		case setRowRe.MatchString(line):
			m := setRowRe.FindStringSubmatch(line)
			if p.exercise == nil {
				return nil, &ParseError{Line: lineNo, Reason: "set row before any exercise header"}
			}
			num, _ := strconv.Atoi(m[1])
			weight, bw, ok := parseWeight(m[2])
			if !ok {
				return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("invalid weight %q", m[2])}
			}
			reps, _ := strconv.Atoi(m[3])
			set := Set{Number: num, Weight: weight, BodyweightPlus: bw, Reps: reps}
			if rir, ok := parseDecimal(m[4]); ok {
				set.RIR = &rir
			}
			p.exercise.Sets = append(p.exercise.Sets, set)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading alpha export: %w", err)
	}

	p.flushSession()
	return p.sessions, nil
}

// parseStarted accepts "2026-02-19 4:54" and "2026-02-19 16:54".
func parseStarted(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid session start %q", s)
}

// parseDuration returns nil for durations it does not recognise.
func parseDuration(s string) *int {
	s = strings.TrimSpace(s)
	var minutes int
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		minutes = h*60 + mins
	} else if m := minutesRe.FindStringSubmatch(s); m != nil {
		minutes, _ = strconv.Atoi(m[1])
	} else {
		return nil
	}
	return &minutes
}

// parseWarmups reads the "<br>" separated warmup list of an exercise
// header.
func parseWarmups(s string) []Set {
	if s == "" {
		return nil
	}
	var sets []Set
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw, _ := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, Set{Number: num, Weight: weight, BodyweightPlus: bw, Reps: reps})
	}
	return sets
}

// parseWeight handles decimal commas and the "+N" bodyweight-plus notation:
// "+35" is (35, true), "102,5" is (102.5, false).
func parseWeight(s string) (weight float64, bodyweightPlus bool, ok bool) {
	s = strings.TrimSpace(s)
	if rest, found := strings.CutPrefix(s, "+"); found {
		w, ok := parseDecimal(rest)
		return w, true, ok
	}
	w, ok := parseDecimal(s)
	return w, false, ok
}

// parseDecimal parses "102,5" or "102.5".
func parseDecimal(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
