package natsrv

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/nats-io/nats.go"

	"github.com/programme-lv/coderun/api"
)

const (
	HdrContentEncoding = "Content-Encoding"
	HdrAcceptEncoding  = "Accept-Encoding"
	EncodingZstd       = "zstd"
)

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll calls.
var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// DecodeRequest reads an api.ExecReq, decompressing it first if the header says so.
func DecodeRequest(hdr nats.Header, data []byte) (api.ExecReq, error) {
	var req api.ExecReq
	if hdr.Get(HdrContentEncoding) == EncodingZstd {
		raw, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return req, fmt.Errorf("failed to decompress request: %w", err)
		}
		data = raw
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return req, nil
}

// EncodeResponse builds the reply message, compressed when compress is set.
func EncodeResponse(res api.ExecRes, compress bool) (*nats.Msg, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	msg := &nats.Msg{Header: nats.Header{}}
	if compress {
		data = encoder.EncodeAll(data, nil)
		msg.Header.Set(HdrContentEncoding, EncodingZstd)
	}
	msg.Data = data
	return msg, nil
}

// EncodeRequest is the client-side counterpart of DecodeRequest.
func EncodeRequest(subject string, req api.ExecReq, compress bool) (*nats.Msg, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	msg := nats.NewMsg(subject)
	msg.Header.Set(HdrAcceptEncoding, EncodingZstd)
	if compress {
		data = encoder.EncodeAll(data, nil)
		msg.Header.Set(HdrContentEncoding, EncodingZstd)
	}
	msg.Data = data
	return msg, nil
}

// DecodeResponse is the client-side counterpart of EncodeResponse.
func DecodeResponse(msg *nats.Msg) (api.ExecRes, error) {
	var res api.ExecRes
	data := msg.Data
	if msg.Header.Get(HdrContentEncoding) == EncodingZstd {
		raw, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return res, fmt.Errorf("failed to decompress response: %w", err)
		}
		data = raw
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return res, nil
}
