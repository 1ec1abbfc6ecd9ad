package innertube

import (
	"net/http"
	"time"

	"github.com/ytget/ytapi/internal/botguard"
)

// doWithBotguardRetry executes the request. In Force mode a token is applied
// up front; in Auto and Force mode a 403 triggers one attestation and a
// single retry of the same request.
func (c *Client) doWithBotguardRetry(req *http.Request) (*http.Response, error) {
	if c.bg.solver == nil || c.bg.mode == botguard.Off {
		return c.HTTPClient.Do(req)
	}

	if c.bg.mode == botguard.Force {
		c.logger().Debug("Botguard preflight attestation")
		if err := c.maybeApplyBotguard(req); err != nil {
			c.logger().Warn("Botguard preflight failed", map[string]interface{}{"error": err.Error()})
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		return resp, err
	}

	c.logger().Info("Player request forbidden, attempting attestation")
	if aerr := c.maybeApplyBotguard(req); aerr != nil {
		c.logger().Warn("Botguard attestation failed", map[string]interface{}{"error": aerr.Error()})
		return resp, nil
	}
	if req.GetBody != nil {
		body, berr := req.GetBody()
		if berr != nil {
			return resp, nil
		}
		_ = resp.Body.Close()
		req.Body = body
		return c.HTTPClient.Do(req)
	}
	_ = resp.Body.Close()
	return c.HTTPClient.Do(req)
}

// maybeApplyBotguard sets the attestation header, using the cache when it
// holds a live token for the request's identity.
func (c *Client) maybeApplyBotguard(req *http.Request) error {
	if c.bg.solver == nil {
		return nil
	}
	in := botguard.Input{
		UserAgent:     req.Header.Get("User-Agent"),
		PageURL:       baseURL + "/",
		ClientName:    c.clientName,
		ClientVersion: c.ClientVersion(),
		VisitorID:     req.Header.Get(headerVisitorID),
	}
	key := botguard.KeyFromInput(in)
	if c.bg.cache != nil {
		if out, ok := c.bg.cache.Get(key); ok {
			c.logger().Debug("Botguard cache hit")
			if out.Token != "" {
				req.Header.Set(headerBotguard, out.Token)
			}
			return nil
		}
	}

	out, err := c.bg.solver.Attest(req.Context(), in)
	if err != nil {
		return err
	}
	if out.ExpiresAt.IsZero() && c.bg.ttl > 0 {
		out.ExpiresAt = time.Now().Add(c.bg.ttl)
	}
	if out.Token != "" {
		req.Header.Set(headerBotguard, out.Token)
	}
	if c.bg.cache != nil {
		c.bg.cache.Set(key, out)
	}
	return nil
}
