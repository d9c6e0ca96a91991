package deepseek

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "sk-test" })

	info := m.Info()
	assert.Equal(t, "deepseek", info.Provider)
	assert.Equal(t, DefaultModel, info.Name)
}

func TestNewModelOverrides(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "sk-test"
		o.Model = ReasonerModel
	})

	assert.Equal(t, ReasonerModel, m.Info().Name)
}
