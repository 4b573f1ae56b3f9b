package remote

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
)

// Analyzer is the remote analysis collaborator as seen by the session layer.
type Analyzer interface {
	AnalyzeProduct(ctx context.Context, names []string, profile domain.SkinTypeProfile) (*domain.AnalysisResult, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the product analysis service. It never retries; the user
// re-runs analysis instead.
type Client struct {
	client   *resty.Client
	endpoint string
	logger   *zap.Logger
}

type analyzeRequest struct {
	IngredientNames []string `json:"ingredient_names"`
	SkinType        string   `json:"skin_type"`
}

// analyzeResponse keeps Success as a pointer so a missing flag is detected.
type analyzeResponse struct {
	Report         string                `json:"analysis_report"`
	GoodMatches    []domain.GoodMatch    `json:"good_matches"`
	CautionMatches []domain.CautionMatch `json:"bad_matches"`
	Success        *bool                 `json:"success"`
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.APIConfig.AnalysisBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.APIConfig.AnalysisTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", constants.APIConfig.UserAgent)

	return &Client{
		client:   client,
		endpoint: baseURL + constants.APIConfig.AnalyzePath,
		logger:   logger,
	}
}

// AnalyzeProduct posts the candidate names and the profile's Korean labels.
// Failures are REMOTE_UNAVAILABLE, REMOTE_TIMEOUT or REMOTE_MALFORMED.
func (c *Client) AnalyzeProduct(ctx context.Context, names []string, profile domain.SkinTypeProfile) (*domain.AnalysisResult, error) {
	started := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(analyzeRequest{
			IngredientNames: names,
			SkinType:        profile.String(),
		}).
		Post(constants.APIConfig.AnalyzePath)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("Analysis request timed out", zap.String("endpoint", c.endpoint), zap.Error(err))
			return nil, errors.NewRemoteError(errors.CodeRemoteTimeout, "analysis request timed out", c.endpoint, 0, err)
		}
		c.logger.Warn("Analysis request failed", zap.String("endpoint", c.endpoint), zap.Error(err))
		return nil, errors.NewRemoteError(errors.CodeRemoteUnavailable, "analysis request failed", c.endpoint, 0, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("Analysis service returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.String("endpoint", c.endpoint),
		)
		return nil, errors.NewRemoteError(errors.CodeRemoteUnavailable,
			fmt.Sprintf("analysis service returned %d", resp.StatusCode()), c.endpoint, resp.StatusCode(), nil)
	}

	var decoded analyzeResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		c.logger.Warn("Failed to decode analysis response", zap.Error(err))
		return nil, errors.NewRemoteError(errors.CodeRemoteMalformed, "invalid analysis response", c.endpoint, resp.StatusCode(), err)
	}
	if decoded.Success == nil {
		return nil, errors.NewRemoteError(errors.CodeRemoteMalformed, "analysis response has no success flag", c.endpoint, resp.StatusCode(), nil)
	}
	if !*decoded.Success {
		return nil, errors.NewRemoteError(errors.CodeRemoteUnavailable, "analysis service reported failure", c.endpoint, resp.StatusCode(), nil)
	}

	c.logger.Info("Product analyzed",
		zap.Int("ingredients", len(names)),
		zap.Int("good_matches", len(decoded.GoodMatches)),
		zap.Int("caution_matches", len(decoded.CautionMatches)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &domain.AnalysisResult{
		Report:         decoded.Report,
		GoodMatches:    decoded.GoodMatches,
		CautionMatches: decoded.CautionMatches,
		Success:        true,
	}, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
