package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
)

func TestEmitterNoProducerDropsEvents(t *testing.T) {
	// event publishing is optional; without a broker everything is a no-op
	e := NewEmitter(nil, logging.NewNop())

	m := &models.MatchResult{ID: "m1", InstallationID: "inst-1", InterconnectionID: "ic-1"}
	assert.NoError(t, e.EmitMatchCreated(context.Background(), m))
	assert.NoError(t, e.EmitMatchResolved(context.Background(), m, true))
	assert.NoError(t, e.EmitRunCompleted(context.Background(), &models.RunSummary{}))
}

func TestNilEmitterIsSafe(t *testing.T) {
	var e *Emitter
	m := &models.MatchResult{ID: "m1"}
	assert.NoError(t, e.EmitMatchCreated(context.Background(), m))
	assert.NoError(t, e.EmitRunCompleted(context.Background(), &models.RunSummary{}))
}
