package feedback

import (
	"fmt"
	"sync"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/observability"
	"github.com/Egham-7/llmonitor-api/internal/utils"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/valyala/fasthttp"
)

// Notifier forwards stored feedback to a chat webhook from a fixed pool of
// workers. Deliveries are attempted once.
type Notifier struct {
	client   *fasthttp.Client
	url      string
	timeout  time.Duration
	metrics  *observability.Metrics
	tasks    chan notification
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

type notification struct {
	Feedback  models.Feedback
	RequestID string
}

type webhookPayload struct {
	Text string `json:"text"`
}

// NewNotifier starts the worker pool. It returns nil when no webhook URL is
// configured; a nil Notifier discards everything.
func NewNotifier(cfg *models.FeedbackConfig, metrics *observability.Metrics) *Notifier {
	if cfg == nil || cfg.WebhookURL == "" {
		return nil
	}

	n := &Notifier{
		client: &fasthttp.Client{
			Name:         "llmonitor-feedback",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		url:     cfg.WebhookURL,
		timeout: cfg.Timeout,
		metrics: metrics,
		tasks:   make(chan notification, max(cfg.BufferSize, 1)),
		stopped: make(chan struct{}),
	}

	for range max(cfg.Workers, 1) {
		n.wg.Add(1)
		go n.run()
	}

	return n
}

// Notify queues a notification without blocking. It is dropped when the
// buffer is full or the notifier has stopped.
func (n *Notifier) Notify(fb models.Feedback, requestID string) {
	if n == nil {
		return
	}

	select {
	case <-n.stopped:
		fiberlog.Warnf("[%s] Feedback notifier stopped, dropping notification", requestID)
		n.metrics.NotificationSent("dropped")
		return
	default:
	}

	select {
	case n.tasks <- notification{Feedback: fb, RequestID: requestID}:
	default:
		fiberlog.Warnf("[%s] Feedback notification buffer full, dropping notification", requestID)
		n.metrics.NotificationSent("dropped")
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()

	for {
		select {
		case <-n.stopped:
			n.drain()
			return
		case task := <-n.tasks:
			n.deliver(task)
		}
	}
}

func (n *Notifier) drain() {
	for {
		select {
		case task := <-n.tasks:
			n.deliver(task)
		default:
			return
		}
	}
}

func (n *Notifier) deliver(task notification) {
	if err := n.send(task.Feedback); err != nil {
		fiberlog.Errorf("[%s] Failed to deliver feedback notification: %v", task.RequestID, err)
		n.metrics.NotificationSent("error")
		return
	}
	n.metrics.NotificationSent("success")
}

func (n *Notifier) send(fb models.Feedback) error {
	body, err := utils.MarshalToBuffer(webhookPayload{Text: formatMessage(fb)})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	defer utils.PutBuffer(body)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body.B)

	if err := n.client.DoTimeout(req, resp, n.timeout); err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return fmt.Errorf("webhook responded with status %d", status)
	}
	return nil
}

// Stop delivers what is already queued and waits for the workers.
func (n *Notifier) Stop() {
	if n == nil {
		return
	}
	n.stopOnce.Do(func() {
		close(n.stopped)
		n.wg.Wait()
	})
}

func formatMessage(fb models.Feedback) string {
	page := fb.CurrentPage
	if page == "" {
		page = "unknown page"
	}
	return fmt.Sprintf("New feedback from %s (%s):\n%s", fb.UserID, page, fb.Message)
}
