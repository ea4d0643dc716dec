package restyutil

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives one rendered request/response exchange per call.
type Output interface {
	Write(id string, contents string)
}

type dumpCtx struct {
	output    Output
	idcounter *uint64
}

type messageIdKey struct{}

// InstrumentDump logs every request at debug level and, when `output` is not
// nil, writes the full exchange to it. it is a no-op unless debug logging is
// enabled.
func InstrumentDump(client *resty.Client, output Output) {
	var idcounter uint64
	d := dumpCtx{output: output, idcounter: &idcounter}
	client.OnBeforeRequest(d.onBeforeRequest)
	client.OnAfterResponse(d.onAfterResponse)
	client.OnError(d.onError)
}

func (d dumpCtx) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx := req.Context()
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return nil
	}
	messageId := strconv.FormatUint(atomic.AddUint64(d.idcounter, 1), 10)
	slog.DebugContext(
		ctx, "start request",
		"method", req.Method,
		"url", req.URL,
		"message_id", messageId,
	)
	req.SetContext(context.WithValue(ctx, messageIdKey{}, messageId))
	return nil
}

func (d dumpCtx) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	messageId, ok := ctx.Value(messageIdKey{}).(string)
	if !ok {
		return nil
	}
	slog.DebugContext(
		ctx, "request finished",
		"method", res.Request.Method,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"message_id", messageId,
	)
	if d.output != nil {
		d.output.Write(messageId, formatHttpMessage(res))
	}
	return nil
}

func (d dumpCtx) onError(req *resty.Request, err error) {
	messageId, _ := req.Context().Value(messageIdKey{}).(string)
	slog.DebugContext(
		req.Context(), "request failed",
		"method", req.Method,
		"url", req.URL,
		"err", err,
		"message_id", messageId,
	)
}
