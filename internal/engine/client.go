// Package engine talks to the external execution engine over NATS.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/internal/services"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stackhook/engine/pkg/logger"
	"go.uber.org/zap"
)

const (
	// SubjectBuild receives relayed application build jobs.
	SubjectBuild = "engine.deployments.build"

	startSubjectPrefix = "engine.start."
)

// StartSubject is the request subject for starting resources of kind.
func StartSubject(kind models.Kind) string {
	return startSubjectPrefix + string(kind)
}

// conn is the subset of *nats.Conn used by Client.
type conn interface {
	Publish(subject string, data []byte) error
	RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error)
	Drain() error
	Close()
	IsClosed() bool
}

type StartRequest struct {
	Kind     models.Kind `json:"kind"`
	UUID     string      `json:"uuid"`
	Name     string      `json:"name"`
	ServerID uint        `json:"server_id"`
}

type StartReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type Client struct {
	nc           conn
	startTimeout time.Duration
}

// Connect dials NATS and keeps reconnecting for the life of the process.
func Connect(url, name string, startTimeout time.Duration) (*Client, error) {
	log := logger.Named("nats")
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return NewClient(nc, startTimeout), nil
}

func NewClient(nc conn, startTimeout time.Duration) *Client {
	return &Client{nc: nc, startTimeout: startTimeout}
}

func (c *Client) Publish(ctx context.Context, subject string, payload []byte) error {
	if c.nc == nil || c.nc.IsClosed() {
		return appErr.New(appErr.CodeUnavailable, "nats not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.nc.Publish(subject, payload); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "nats publish failed")
	}
	return nil
}

// Start asks the engine to start res and waits for its acknowledgement,
// bounded by the configured start timeout.
func (c *Client) Start(ctx context.Context, res models.Resource) error {
	if c.nc == nil || c.nc.IsClosed() {
		return appErr.New(appErr.CodeUnavailable, "nats not connected")
	}
	body, err := json.Marshal(StartRequest{
		Kind:     res.Kind(),
		UUID:     res.GetUUID(),
		Name:     res.GetName(),
		ServerID: res.GetServerID(),
	})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode start request failed")
	}

	if c.startTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.startTimeout)
		defer cancel()
	}
	msg, err := c.nc.RequestWithContext(ctx, StartSubject(res.Kind()), body)
	switch {
	case err == nil:
	case errors.Is(err, nats.ErrNoResponders):
		return appErr.Wrap(err, appErr.CodeUnavailable, "no engine is handling start requests")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
		return appErr.Wrap(err, appErr.CodeDeadline, "start request timed out")
	default:
		return appErr.Wrap(err, appErr.CodeUnavailable, "start request failed")
	}

	var reply StartReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "decode start reply failed")
	}
	if !reply.OK {
		return appErr.New(appErr.CodeUnavailable, "engine refused start").WithMeta("reason", reply.Error)
	}
	logger.L().Info("resource started", zap.String("kind", string(res.Kind())), zap.String("resource_uuid", res.GetUUID()))
	return nil
}

// StartActions binds Start to every startable kind.
func (c *Client) StartActions() services.StartActions {
	out := services.StartActions{}
	for _, kind := range models.AllKinds() {
		if kind == models.KindApplication {
			continue
		}
		out[kind] = c.Start
	}
	return out
}

func (c *Client) Close() {
	if c.nc == nil {
		return
	}
	if err := c.nc.Drain(); err != nil {
		logger.L().Warn("nats drain failed", zap.Error(err))
	}
	c.nc.Close()
}
