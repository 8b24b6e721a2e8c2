package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// HTTPSubmitter posts submissions as multipart/form-data to {BaseURL}/submit.
type HTTPSubmitter struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Submit encodes s and decodes the JSON answer. A non-JSON body is reported
// as ErrMalformedResponse whatever the status code.
func (h *HTTPSubmitter) Submit(ctx context.Context, s Submission) (SubmitResult, error) {
	var res SubmitResult

	body, contentType, err := EncodeMultipart(s)
	if err != nil {
		return res, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(h.BaseURL, "/")+"/submit", body)
	if err != nil {
		return res, err
	}
	req.Header.Set("Content-Type", contentType)
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := httpClient(h.Client).Do(req)
	if err != nil {
		return res, fmt.Errorf("submission endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, fmt.Errorf("read submission response: %w", err)
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return SubmitResult{}, fmt.Errorf("%w (status %d)", ErrMalformedResponse, resp.StatusCode)
	}
	if !res.Success && res.Error == "" && resp.StatusCode >= 400 {
		res.Error = resp.Status
	}
	return res, nil
}

// EncodeMultipart writes the fields in name order followed by the image part.
func EncodeMultipart(s Submission) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	names := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := w.WriteField(k, s.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	if s.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, s.Image.Filename))
		ct := s.Image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(s.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
