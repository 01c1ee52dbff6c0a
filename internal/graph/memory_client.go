package graph

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Mode distinguishes read from write transactions in the call log.
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// ExecutedQuery is one statement seen by a MemoryClient.
type ExecutedQuery struct {
	Mode   Mode
	Query  string
	Params map[string]any
}

// MemoryClient is an in-memory Client for tests. A query is answered by the
// first rule whose fragment it contains; otherwise the next queued result for
// its mode is returned, and an empty Result when the queue is drained.
type MemoryClient struct {
	mu           sync.Mutex
	calls        []ExecutedQuery
	queued       map[Mode][]Result
	rules        []rule
	err          error
	connectivity error
}

type rule struct {
	fragment string
	result   Result
	err      error
}

// NewMemoryClient returns an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{queued: make(map[Mode][]Result)}
}

// WithError makes every subsequent query fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	m.connectivity = err
	m.mu.Unlock()
	return m
}

// On answers every query containing fragment with res.
func (m *MemoryClient) On(fragment string, res Result) *MemoryClient {
	return m.addRule(rule{fragment: fragment, result: res})
}

// OnError fails every query containing fragment with err.
func (m *MemoryClient) OnError(fragment string, err error) *MemoryClient {
	return m.addRule(rule{fragment: fragment, err: err})
}

func (m *MemoryClient) addRule(r rule) *MemoryClient {
	m.mu.Lock()
	m.rules = append(m.rules, r)
	m.mu.Unlock()
	return m
}

// PushReadResult queues a result for the next unmatched ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) { m.push(ModeRead, res) }

// PushWriteResult queues a result for the next unmatched ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) { m.push(ModeWrite, res) }

func (m *MemoryClient) push(mode Mode, res Result) {
	m.mu.Lock()
	m.queued[mode] = append(m.queued[mode], res)
	m.mu.Unlock()
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ModeWrite, cypher, params)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ModeRead, cypher, params)
}

func (m *MemoryClient) execute(mode Mode, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Result{}, m.err
	}
	m.calls = append(m.calls, ExecutedQuery{Mode: mode, Query: cypher, Params: maps.Clone(params)})

	for _, r := range m.rules {
		if strings.Contains(cypher, r.fragment) {
			return r.result, r.err
		}
	}
	queue := m.queued[mode]
	if len(queue) == 0 {
		return Result{}, nil
	}
	m.queued[mode] = queue[1:]
	return queue[0], nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// Calls returns every executed query in order.
func (m *MemoryClient) Calls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// WriteCalls returns the executed write queries in order.
func (m *MemoryClient) WriteCalls() []ExecutedQuery { return m.callsFor(ModeWrite) }

// ReadCalls returns the executed read queries in order.
func (m *MemoryClient) ReadCalls() []ExecutedQuery { return m.callsFor(ModeRead) }

func (m *MemoryClient) callsFor(mode Mode) []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ExecutedQuery
	for _, c := range m.calls {
		if c.Mode == mode {
			out = append(out, c)
		}
	}
	return out
}
