package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportSession appends the rounds that finished since the last export to a
// text file. A round finishes when the next one is drawn or the game ends.
// It returns the number of rounds written.
func ExportSession(s *SessionCtx, filename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase == PhaseLobby {
		return 0, nil
	}
	closing := ""
	if s.Phase == PhaseEnd && !s.endLogged {
		closing = "Game ended"
	}
	return s.exportLocked(filename, s.concludedLocked(), closing)
}

// ExportAbandoned logs a game that is about to be quit. The round on screen
// counts as played.
func ExportAbandoned(s *SessionCtx, filename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase != PhasePlaying || s.endLogged {
		return 0, nil
	}
	return s.exportLocked(filename, len(s.rounds), "Game abandoned")
}

func (s *SessionCtx) exportLocked(filename string, concluded int, closing string) (int, error) {
	if concluded <= s.exported && closing == "" {
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	fileExists := false
	if _, err := os.Stat(filename); err == nil {
		fileExists = true
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	if s.exported == 0 {
		if fileExists {
			sb.WriteString("\n\n")
		}
		writeHeader(&sb, s)
	}
	total := 0
	if s.config != nil {
		total = s.config.TotalRounds
	}
	written := 0
	for _, r := range s.rounds[s.exported:concluded] {
		writeRound(&sb, r, total)
		written++
	}
	if closing != "" {
		sb.WriteString(fmt.Sprintf("%s at %s\n", closing, time.Now().Format("2006-01-02 15:04:05")))
		sb.WriteString(strings.Repeat("=", 50) + "\n")
	}

	if _, err := file.WriteString(sb.String()); err != nil {
		return 0, fmt.Errorf("failed to write to file: %w", err)
	}
	s.exported = concluded
	if closing != "" {
		s.endLogged = true
	}
	return written, nil
}

func writeHeader(sb *strings.Builder, s *SessionCtx) {
	sb.WriteString(fmt.Sprintf("Game log - Session %s\n", s.Code))
	sb.WriteString(fmt.Sprintf("Started: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	if s.config != nil {
		themes := make([]string, 0, len(s.config.Themes))
		for _, t := range s.config.Themes {
			themes = append(themes, string(t))
		}
		sb.WriteString(fmt.Sprintf("Mode: %s, %d rounds, themes: %s\n", s.config.Mode, s.config.TotalRounds, strings.Join(themes, ", ")))
	}
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString("Players:\n")
	for _, p := range s.players {
		if p.Avatar != "" {
			sb.WriteString(fmt.Sprintf("- %s %s\n", p.Avatar, p.Name))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", p.Name))
		}
	}
	sb.WriteString("\n")
}

func writeRound(sb *strings.Builder, r *Round, total int) {
	c := r.Challenge
	sb.WriteString(fmt.Sprintf("Round %d/%d [%s] %s\n", r.Index, total, c.Theme, c.Title))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	if c.IntensityLabel != "" {
		sb.WriteString(fmt.Sprintf("%s\n", c.IntensityLabel))
	}
	sb.WriteString(c.Message + "\n")
	if c.HasReveal() {
		state := "not revealed"
		if r.Revealed {
			state = "revealed"
		}
		sb.WriteString(fmt.Sprintf("Answer (%s): %s\n", state, c.RevealableAnswer))
	}
	if c.IsTrueFalse {
		sb.WriteString(fmt.Sprintf("Correct answer: %s\n", trueFalseWord(c.CorrectAnswerIsTrue)))
		if r.Answer != nil {
			sb.WriteString(strings.ReplaceAll(r.Answer.DisplayMessage, "\n", " ") + "\n")
		}
	}
	if c.CountdownSeconds > 0 {
		sb.WriteString(fmt.Sprintf("Timer: %ds\n", c.CountdownSeconds))
	}
	sb.WriteString("\n")
}

func trueFalseWord(v bool) string {
	if v {
		return "vrai"
	}
	return "faux"
}
