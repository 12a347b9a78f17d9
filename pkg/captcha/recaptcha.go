// Package captcha verifies reCAPTCHA tokens submitted by the browser.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hris-auth/pkg/utils"

	"go.uber.org/zap"
)

// siteVerifyResponse is the subset of the siteverify reply we act on.
type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// RecaptchaVerifier checks tokens against Google's siteverify endpoint.
type RecaptchaVerifier struct {
	client    *http.Client
	secret    string
	verifyURL string
	log       *zap.Logger
}

func NewRecaptchaVerifier(cfg utils.CaptchaConfig, log *zap.Logger) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		client:    &http.Client{Timeout: 10 * time.Second},
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		log:       log.With(zap.String("component", "recaptcha")),
	}
}

// Verify returns false with a nil error when the provider rejects the token,
// and a non-nil error when the provider could not be asked.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("call siteverify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var body siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode siteverify response: %w", err)
	}

	if !body.Success {
		v.log.Warn("reCAPTCHA token rejected", zap.Strings("error_codes", body.ErrorCodes))
	}

	return body.Success, nil
}

// DisabledVerifier accepts every non-empty token. Wired when RECAPTCHA_ENABLED is false.
type DisabledVerifier struct {
	log *zap.Logger
}

func NewDisabledVerifier(log *zap.Logger) *DisabledVerifier {
	return &DisabledVerifier{log: log.With(zap.String("component", "recaptcha"))}
}

func (v *DisabledVerifier) Verify(_ context.Context, token, _ string) (bool, error) {
	if token == "" {
		return false, nil
	}
	v.log.Debug("reCAPTCHA disabled, token accepted without verification")
	return true, nil
}
