package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

type jobMsg interface {
	isJob()
	jobID() int
}

type jobStartedMsg struct {
	Title string
	ID    int
}

func (jobStartedMsg) isJob()         {}
func (msg jobStartedMsg) jobID() int { return msg.ID }

type jobFinishedMsg struct {
	Title  string
	Result string
	Err    error
	ID     int
}

func (jobFinishedMsg) isJob()         {}
func (msg jobFinishedMsg) jobID() int { return msg.ID }

type jobChannelClosedMsg struct {
	ID int
}

func (jobChannelClosedMsg) isJob()         {}
func (msg jobChannelClosedMsg) jobID() int { return msg.ID }

// jobRequest is a unit of background work such as writing an export. run
// returns a short description of the result, e.g. the written path.
type jobRequest struct {
	title    string
	run      func(ctx context.Context) (string, error)
	onFinish func(result string, err error) tea.Cmd
}

// jobManager runs requests one at a time in submission order.
type jobManager struct {
	queue   []jobRequest
	current *jobRequest
	running bool
	nextID  int
	ch      chan jobMsg
	cancel  context.CancelFunc
	limit   int
}

const defaultJobQueueLimit = 8

func newJobManager() *jobManager {
	return &jobManager{limit: defaultJobQueueLimit}
}

// Enqueue adds req and starts it when idle. It reports false when the queue
// is full.
func (jm *jobManager) Enqueue(req jobRequest) (tea.Cmd, bool) {
	if len(jm.queue) >= jm.limit {
		return nil, false
	}
	jm.queue = append(jm.queue, req)
	return jm.nextCmd(), true
}

func (jm *jobManager) Pending() int { return len(jm.queue) }

func (jm *jobManager) Running() (string, bool) {
	if jm.current == nil {
		return "", false
	}
	return jm.current.title, true
}

// Handle advances the queue for messages emitted by the running job.
func (jm *jobManager) Handle(msg jobMsg) tea.Cmd {
	if msg.jobID() != jm.nextID {
		return nil
	}
	switch msg := msg.(type) {
	case jobStartedMsg:
		return waitForJobMsg(jm.ch, msg.ID)
	case jobFinishedMsg:
		var done tea.Cmd
		if jm.current != nil && jm.current.onFinish != nil {
			done = jm.current.onFinish(msg.Result, msg.Err)
		}
		return tea.Batch(done, waitForJobMsg(jm.ch, msg.ID))
	case jobChannelClosedMsg:
		jm.finish()
		return jm.nextCmd()
	}
	return nil
}

// Cancel stops the running job; queued jobs still run.
func (jm *jobManager) Cancel() bool {
	if jm.cancel == nil {
		return false
	}
	jm.cancel()
	return true
}

func (jm *jobManager) finish() {
	if jm.cancel != nil {
		jm.cancel()
	}
	jm.running = false
	jm.current = nil
	jm.cancel = nil
	jm.ch = nil
}

func (jm *jobManager) nextCmd() tea.Cmd {
	if jm.running {
		return nil
	}
	if len(jm.queue) == 0 {
		return nil
	}
	req := jm.queue[0]
	jm.queue = jm.queue[1:]
	jm.current = &req
	jm.running = true
	jm.nextID++

	ctx, cancel := context.WithCancel(context.Background())
	jm.cancel = cancel
	jm.ch = make(chan jobMsg, 2)
	go runJob(ctx, jm.nextID, req, jm.ch)
	return waitForJobMsg(jm.ch, jm.nextID)
}

func runJob(ctx context.Context, id int, req jobRequest, ch chan<- jobMsg) {
	defer close(ch)

	ch <- jobStartedMsg{Title: req.title, ID: id}
	result, err := req.run(ctx)
	if err == nil {
		err = ctx.Err()
	}
	ch <- jobFinishedMsg{Title: req.title, Result: result, Err: err, ID: id}
}

func waitForJobMsg(ch <-chan jobMsg, id int) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return jobChannelClosedMsg{ID: id}
		}
		return msg
	}
}
