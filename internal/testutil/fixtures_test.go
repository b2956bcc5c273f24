package testutil

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtures_Validate(t *testing.T) {
	for _, entity := range []interface{ Validate() error }{Entities(), Comments(), Unconfigured()} {
		require.NoError(t, entity.Validate())
	}
}

func TestEntities_RuleOrder(t *testing.T) {
	m := Entities().AttributeMap()

	assert.Equal(t, 10, m.Len())
	assert.Equal(t, []string{
		"serial_number", "entities.model_number", "name", "entities.size_x", "entities.size_y",
		"color", "weight", "created_at", "rate",
	}, m.Targets(), "entity rules come first; name is shared")
}

func TestEntityRows_CoverColumns(t *testing.T) {
	cols := EntityColumns()
	for _, row := range EntityRows() {
		assert.Len(t, row, len(cols))
		for col := range row {
			_, ok := cols[col]
			assert.True(t, ok, "row column %s must be declared", col)
		}
	}
}

func TestWarningRecorder(t *testing.T) {
	rec := NewWarningRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Handle(errors.New("w"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, rec.Len())
	assert.Len(t, rec.Warnings(), 10)

	rec.Reset()
	assert.Equal(t, 0, rec.Len())
}
