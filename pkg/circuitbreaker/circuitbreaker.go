// Package circuitbreaker 熔断器
//
// 状态机: Closed -> (连续失败达到阈值) -> Open -> (冷却时间到) -> HalfOpen
// HalfOpen下探测成功回到Closed，失败重新Open。
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrOpenState 熔断中，请求未执行
	ErrOpenState = errors.New("circuit breaker is open")

	// ErrTooManyRequests 半开状态下探测请求已满
	ErrTooManyRequests = errors.New("circuit breaker: too many requests")
)

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Settings 熔断器配置
type Settings struct {
	Name string

	// MaxRequests 半开状态允许的探测请求数，0按1处理
	MaxRequests uint32

	// Interval Closed状态下清零计数的周期，0表示不清零
	Interval time.Duration

	// Timeout Open状态持续时间
	Timeout time.Duration

	// ReadyToTrip 为nil时连续失败5次熔断
	ReadyToTrip func(Counts) bool

	// IsSuccessful 判断返回的err是否算成功，为nil时仅err == nil算成功
	IsSuccessful func(err error) bool

	OnStateChange func(name string, from, to State)
}

// Breaker 熔断器，并发安全
type Breaker struct {
	name          string
	maxRequests   uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(Counts) bool
	isSuccessful  func(error) bool
	onStateChange func(name string, from, to State)

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
	now        func() time.Time
}

// New 创建熔断器
func New(st Settings) *Breaker {
	b := &Breaker{
		name:          st.Name,
		maxRequests:   st.MaxRequests,
		interval:      st.Interval,
		timeout:       st.Timeout,
		readyToTrip:   st.ReadyToTrip,
		isSuccessful:  st.IsSuccessful,
		onStateChange: st.OnStateChange,
		now:           time.Now,
	}
	if b.maxRequests == 0 {
		b.maxRequests = 1
	}
	if b.timeout <= 0 {
		b.timeout = 30 * time.Second
	}
	if b.readyToTrip == nil {
		b.readyToTrip = func(c Counts) bool { return c.ConsecutiveFailures >= 5 }
	}
	if b.isSuccessful == nil {
		b.isSuccessful = func(err error) bool { return err == nil }
	}
	b.toNewGeneration(b.now())
	return b
}

// Name 熔断器名称
func (b *Breaker) Name() string {
	return b.name
}

// Execute 熔断器允许时执行fn，并记录结果
func (b *Breaker) Execute(fn func() error) error {
	generation, err := b.beforeRequest()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.afterRequest(generation, false)
			panic(r)
		}
	}()

	err = fn()
	b.afterRequest(generation, b.isSuccessful(err))
	return err
}

// State 当前状态
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, _ := b.currentState(b.now())
	return state
}

// Counts 当前计数快照
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

func (b *Breaker) beforeRequest() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.currentState(b.now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && b.counts.Requests >= b.maxRequests:
		return generation, ErrTooManyRequests
	}

	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) afterRequest(before uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	state, generation := b.currentState(now)
	// 期间状态已切换，结果作废
	if generation != before {
		return
	}

	if success {
		b.counts.success()
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.maxRequests {
			b.setState(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	switch state {
	case StateClosed:
		if b.readyToTrip(b.counts) {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.setState(StateOpen, now)
	}
}

func (b *Breaker) currentState(now time.Time) (State, uint64) {
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.toNewGeneration(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.generation
}

func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state
	b.toNewGeneration(now)

	if b.onStateChange != nil {
		b.onStateChange(b.name, prev, state)
	}
}

func (b *Breaker) toNewGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		if b.interval > 0 {
			b.expiry = now.Add(b.interval)
		} else {
			b.expiry = time.Time{}
		}
	case StateOpen:
		b.expiry = now.Add(b.timeout)
	default:
		b.expiry = time.Time{}
	}
}
