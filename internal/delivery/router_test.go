package delivery

import (
	"context"
	"errors"
	"testing"

	"codegen-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStrategy возвращает фиксированный результат или ошибку.
type stubStrategy struct {
	result domain.DeliveryResult
	err    error
	calls  int
}

func (s *stubStrategy) Deliver(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error) {
	s.calls++
	return s.result, s.err
}

func TestDispatchSelectsExactlyOneStrategy(t *testing.T) {
	preview := &stubStrategy{result: domain.DeliveryResult{PreviewURL: "p", CommitHash: "c"}}
	deploy := &stubStrategy{result: domain.DeliveryResult{DeploymentURL: "d", CommitHash: "c"}}
	download := &stubStrategy{result: domain.DeliveryResult{DownloadURL: "z", CommitHash: "c"}}
	r := NewRouter(preview, deploy, download, zap.NewNop())

	result, err := r.Dispatch(context.Background(), domain.OutputModeDeploy, nil, domain.StackNode)
	require.NoError(t, err)

	assert.Equal(t, "d", result.DeploymentURL)
	assert.Equal(t, 1, deploy.calls)
	assert.Equal(t, 0, preview.calls)
	assert.Equal(t, 0, download.calls)
}

func TestDispatchUnknownMode(t *testing.T) {
	r := NewRouter(&stubStrategy{}, &stubStrategy{}, &stubStrategy{}, zap.NewNop())

	_, err := r.Dispatch(context.Background(), domain.OutputMode("carrier-pigeon"), nil, domain.StackNode)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDispatchPropagatesStrategyError(t *testing.T) {
	failing := &stubStrategy{err: errors.New("docker daemon unreachable")}
	r := NewRouter(&stubStrategy{}, failing, &stubStrategy{}, zap.NewNop())

	_, err := r.Dispatch(context.Background(), domain.OutputModeDeploy, nil, domain.StackNode)
	assert.Error(t, err)
}

func TestNewArtifactID(t *testing.T) {
	a := newArtifactID("preview")
	b := newArtifactID("preview")

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "preview-")
}
