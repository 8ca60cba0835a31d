package scan

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/kartta/types"
)

// costScanner returns one resource per region with a fixed cost.
type costScanner struct {
	service string
	cost    float64
}

func (c *costScanner) Service() string { return c.service }
func (c *costScanner) Global() bool    { return false }

func (c *costScanner) ScanRegion(_ context.Context, region string) ([]types.Resource, error) {
	return []types.Resource{{
		ID:                   c.service + "-" + region,
		Service:              c.service,
		Region:               region,
		EstimatedMonthlyCost: c.cost,
	}}, nil
}

type panicScanner struct{ service string }

func (p *panicScanner) Service() string { return p.service }
func (p *panicScanner) Global() bool    { panic("broken scanner") }
func (p *panicScanner) ScanRegion(context.Context, string) ([]types.Resource, error) {
	panic("unreachable")
}

func newRegistry(t *testing.T, scanners ...RegionScanner) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, s := range scanners {
		require.NoError(t, registry.Register(s))
	}
	return registry
}

func TestOrchestrator_CollectTwoByTwo(t *testing.T) {
	registry := newRegistry(t,
		&costScanner{service: "ec2", cost: 10},
		&costScanner{service: "rds", cost: 20},
	)
	orch := NewOrchestrator(registry, testConfig(), nil, nil)

	report, err := orch.Collect(context.Background(), []string{"us-east-1", "eu-west-1"})
	require.NoError(t, err)

	assert.Len(t, report.Services, 2)
	assert.Equal(t, 4, report.TotalResources())
	assert.InDelta(t, 60.0, report.TotalMonthlyCost(), 0.001)

	byService := map[string]types.ServiceScanResult{}
	for _, s := range report.Services {
		byService[s.Service] = s
	}
	assert.Equal(t, 2, byService["ec2"].Count)
	assert.InDelta(t, 20.0, byService["ec2"].Cost, 0.001)
	assert.Equal(t, 2, byService["rds"].Count)
	assert.InDelta(t, 40.0, byService["rds"].Cost, 0.001)
}

func TestOrchestrator_PanickingServiceIsolated(t *testing.T) {
	registry := newRegistry(t,
		&costScanner{service: "ec2", cost: 5},
		&panicScanner{service: "broken"},
	)
	orch := NewOrchestrator(registry, testConfig(), nil, nil)

	report, err := orch.Collect(context.Background(), []string{"us-east-1"})
	require.NoError(t, err)

	byService := map[string]types.ServiceScanResult{}
	for _, s := range report.Services {
		byService[s.Service] = s
	}

	require.Contains(t, byService, "broken")
	assert.True(t, byService["broken"].Failed())
	assert.Contains(t, byService["broken"].Err.Error(), "panic")

	assert.False(t, byService["ec2"].Failed(), "healthy sibling unaffected")
	assert.Equal(t, 1, byService["ec2"].Count)
}

func TestOrchestrator_ServiceFilterDenyWins(t *testing.T) {
	registry := newRegistry(t,
		&costScanner{service: "ec2", cost: 1},
		&costScanner{service: "rds", cost: 1},
		&costScanner{service: "sqs", cost: 1},
	)

	cfg := testConfig()
	cfg.SkipServices = []string{"rds"}
	cfg.OnlyServices = []string{"rds", "sqs"}
	orch := NewOrchestrator(registry, cfg, nil, nil)

	report, err := orch.Collect(context.Background(), []string{"us-east-1"})
	require.NoError(t, err)

	require.Len(t, report.Services, 1)
	assert.Equal(t, "sqs", report.Services[0].Service)
}

func TestOrchestrator_StreamDeliversEverything(t *testing.T) {
	registry := newRegistry(t,
		&costScanner{service: "ec2", cost: 10},
		&costScanner{service: "rds", cost: 20},
	)
	orch := NewOrchestrator(registry, testConfig(), nil, nil)

	resources, reportCh := orch.Stream(context.Background(), []string{"us-east-1", "eu-west-1"})

	var streamed []types.Resource
	for r := range resources {
		streamed = append(streamed, r)
	}
	report := <-reportCh

	assert.Len(t, streamed, 4)
	assert.Equal(t, 4, report.TotalResources())
	assert.InDelta(t, 60.0, report.TotalMonthlyCost(), 0.001)
	assert.Empty(t, report.AllResources(), "stream report keeps summaries, not resources")
}

func TestOrchestrator_StreamCancellation(t *testing.T) {
	registry := newRegistry(t, &costScanner{service: "ec2", cost: 1})
	orch := NewOrchestrator(registry, testConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resources, reportCh := orch.Stream(ctx, []string{"us-east-1"})
	for range resources {
	}
	report := <-reportCh
	assert.Zero(t, report.TotalResources())
}

func TestOrchestrator_ProgressTickPerService(t *testing.T) {
	registry := newRegistry(t,
		&costScanner{service: "ec2", cost: 1},
		&costScanner{service: "rds", cost: 1},
		&costScanner{service: "sqs", cost: 1},
	)

	var mu sync.Mutex
	var ticks []string
	observer := func(e Event) {
		if e.Type != EventServiceDone {
			return
		}
		mu.Lock()
		ticks = append(ticks, e.Service)
		mu.Unlock()
	}

	orch := NewOrchestrator(registry, testConfig(), nil, observer)
	_, err := orch.Collect(context.Background(), []string{"us-east-1"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"ec2", "rds", "sqs"}, ticks)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&costScanner{service: "ec2"}))
	assert.Error(t, registry.Register(&costScanner{service: "ec2"}))
	assert.Equal(t, []string{"ec2"}, registry.Names())
}
