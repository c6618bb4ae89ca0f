package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/ricirt/healthcheck/internal/domain"
)

// HeaderHealthStatus carries the flag for text/plain updates.
const HeaderHealthStatus = "X-Health-Status"

// DecodeUpdate reads an UpdateRequest from a PUT request.
//
// application/json (or no Content-Type) expects {"status","message"}.
// text/plain takes the body as the message and the flag from
// X-Health-Status, defaulting to healthy. The raw body, before trimming,
// may not exceed domain.MaxMessageLength.
func DecodeUpdate(r *http.Request) (domain.UpdateRequest, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return domain.UpdateRequest{}, fmt.Errorf("%w: bad content type: %v", domain.ErrInvalidPayload, err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		var req domain.UpdateRequest
		if err := dec.Decode(&req); err != nil {
			return domain.UpdateRequest{}, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrInvalidPayload, err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return domain.UpdateRequest{}, fmt.Errorf("%w: trailing data after JSON body", domain.ErrInvalidPayload)
		}
		return req, nil

	case "text/plain":
		// Read one byte past the cap so an oversized body is rejected
		// rather than truncated.
		body, err := io.ReadAll(io.LimitReader(r.Body, domain.MaxMessageLength+1))
		if err != nil {
			return domain.UpdateRequest{}, fmt.Errorf("%w: read body: %v", domain.ErrInvalidPayload, err)
		}
		if len(body) > domain.MaxMessageLength {
			return domain.UpdateRequest{}, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrInvalidPayload, domain.MaxMessageLength)
		}
		flag := domain.HealthFlag(r.Header.Get(HeaderHealthStatus))
		if flag == "" {
			flag = domain.FlagHealthy
		}
		return domain.UpdateRequest{Status: flag, Message: string(body)}, nil

	default:
		return domain.UpdateRequest{}, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidPayload, mediaType)
	}
}
