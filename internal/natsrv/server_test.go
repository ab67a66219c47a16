package natsrv_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/programme-lv/coderun/api"
	"github.com/programme-lv/coderun/internal/natsrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoExecutor struct {
	got []api.ExecReq
}

func (e *echoExecutor) Execute(ctx context.Context, req api.ExecReq) api.ExecRes {
	e.got = append(e.got, req)
	return api.ExecRes{Uuid: req.Uuid, Status: api.Success, Stdout: req.Code}
}

func TestHandlePlainRequest(t *testing.T) {
	exec := &echoExecutor{}
	req, err := natsrv.EncodeRequest("coderun.exec", api.ExecReq{Uuid: "u1", Lang: "python3", Code: "print(1)"}, false)
	require.NoError(t, err)
	req.Header.Del(natsrv.HdrAcceptEncoding)

	reply, err := natsrv.Handle(context.Background(), exec, req.Header, req.Data)
	require.NoError(t, err)
	assert.Empty(t, reply.Header.Get(natsrv.HdrContentEncoding))

	res, err := natsrv.DecodeResponse(reply)
	require.NoError(t, err)
	assert.Equal(t, "u1", res.Uuid)
	assert.Equal(t, "print(1)", res.Stdout)
	require.Len(t, exec.got, 1)
	assert.Equal(t, "python3", exec.got[0].Lang)
}

func TestHandleCompressedRoundTrip(t *testing.T) {
	exec := &echoExecutor{}
	req, err := natsrv.EncodeRequest("coderun.exec", api.ExecReq{Uuid: "u2", Lang: "c", Code: "int main(){}"}, true)
	require.NoError(t, err)
	assert.Equal(t, natsrv.EncodingZstd, req.Header.Get(natsrv.HdrContentEncoding))

	reply, err := natsrv.Handle(context.Background(), exec, req.Header, req.Data)
	require.NoError(t, err)
	assert.Equal(t, natsrv.EncodingZstd, reply.Header.Get(natsrv.HdrContentEncoding))

	res, err := natsrv.DecodeResponse(reply)
	require.NoError(t, err)
	assert.Equal(t, "int main(){}", res.Stdout)
}

func TestHandleMalformedRequest(t *testing.T) {
	exec := &echoExecutor{}

	reply, err := natsrv.Handle(context.Background(), exec, nats.Header{}, []byte("{not json"))
	require.NoError(t, err)

	res, err := natsrv.DecodeResponse(reply)
	require.NoError(t, err)
	assert.Equal(t, api.InvalidRequest, res.Status)
	require.NotNil(t, res.ErrorMessage)
	assert.Empty(t, exec.got)
}

func TestHandleCorruptZstd(t *testing.T) {
	hdr := nats.Header{}
	hdr.Set(natsrv.HdrContentEncoding, natsrv.EncodingZstd)

	reply, err := natsrv.Handle(context.Background(), &echoExecutor{}, hdr, []byte("definitely not zstd"))
	require.NoError(t, err)

	res, err := natsrv.DecodeResponse(reply)
	require.NoError(t, err)
	assert.Equal(t, api.InvalidRequest, res.Status)
}
