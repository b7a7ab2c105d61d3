package cli

import (
	"context"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

type mockPipeline struct {
	runCalls   int
	setupCalls int
	config     dwh.PipelineConfig
	err        error
}

func (m *mockPipeline) Run(_ context.Context, config dwh.PipelineConfig) error {
	m.runCalls++
	m.config = config
	return m.err
}

func (m *mockPipeline) Setup(_ context.Context, config dwh.PipelineConfig) error {
	m.setupCalls++
	m.config = config
	return m.err
}
