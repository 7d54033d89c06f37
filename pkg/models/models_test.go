package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFiscalYearOf(t *testing.T) {
	// FY n runs Oct 1 of n-1 through Sep 30 of n
	assert.Equal(t, 2024, FiscalYearOf(time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, FiscalYearOf(time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, FiscalYearOf(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, FiscalYearOf(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestInstallationMatchDate(t *testing.T) {
	issued := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	completed := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	inst := Installation{IssuedAt: &issued, CompletedAt: &completed}
	assert.Equal(t, &completed, inst.MatchDate())

	inst = Installation{IssuedAt: &issued}
	assert.Equal(t, &issued, inst.MatchDate())

	inst = Installation{}
	assert.Nil(t, inst.MatchDate())

	_, ok := inst.FiscalYear()
	assert.False(t, ok)
}

func TestInterconnectionFiscalYearPayloadWins(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) // derived would be FY2024
	fy := 2023

	ic := Interconnection{InterconnectedAt: &date}
	ic.Details.Data.FiscalYear = &fy

	got, ok := ic.FiscalYear()
	assert.True(t, ok)
	assert.Equal(t, 2023, got)

	ic.Details.Data.FiscalYear = nil
	got, ok = ic.FiscalYear()
	assert.True(t, ok)
	assert.Equal(t, 2024, got)

	ic.InterconnectedAt = nil
	_, ok = ic.FiscalYear()
	assert.False(t, ok)
}

func TestInterconnectionInstaller(t *testing.T) {
	ic := Interconnection{}
	assert.Equal(t, "", ic.Installer())

	name := "Sunrun"
	ic.Details.Data.Installer = &name
	assert.Equal(t, "Sunrun", ic.Installer())
}
