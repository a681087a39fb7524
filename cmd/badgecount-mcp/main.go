package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// countRequest mirrors the badgecount API request model.
type countRequest struct {
	ProfileURL string `json:"profile_url"`
	MaxAge     int    `json:"max_age,omitempty"`
}

// countResponse mirrors the badgecount API response model.
type countResponse struct {
	Success     bool   `json:"success"`
	BadgeCount  int    `json:"badge_count"`
	ProfileURL  string `json:"profile_url"`
	CacheStatus string `json:"cache_status"`
	Error       string `json:"error"`
	Code        string `json:"code"`
}

func main() {
	apiURL := os.Getenv("BADGE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:5000"
	}
	apiKey := os.Getenv("BADGE_API_KEY")

	s := server.NewMCPServer(
		"badgecount",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(countBadgesTool(), handleCountBadges(strings.TrimRight(apiURL, "/"), apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func countBadgesTool() mcp.Tool {
	return mcp.NewTool("count_badges",
		mcp.WithDescription("Count the badges earned on a Google Cloud Skills Boost public profile. A headless browser renders the page; a profile whose badges never render within the timeout counts as 0."),
		mcp.WithString("profile_url",
			mcp.Required(),
			mcp.Description("Public profile URL, e.g. https://www.cloudskillsboost.google/public_profiles/<id>"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Accept a cached count younger than this many milliseconds (default: 0, always count)"),
		),
	)
}

func handleCountBadges(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileURL, err := request.RequireString("profile_url")
		if err != nil {
			return mcp.NewToolResultError("profile_url is required"), nil
		}

		body, err := json.Marshal(countRequest{
			ProfileURL: profileURL,
			MaxAge:     request.GetInt("max_age", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/count-badges", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var countResp countResponse
		if err := json.Unmarshal(respBody, &countResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response (status %d): %v", resp.StatusCode, err)), nil
		}

		if !countResp.Success {
			errMsg := countResp.Error
			if errMsg == "" {
				errMsg = fmt.Sprintf("count failed with status %d", resp.StatusCode)
			}
			if countResp.Code != "" {
				errMsg = fmt.Sprintf("[%s] %s", countResp.Code, errMsg)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		result := fmt.Sprintf("Profile: %s\nBadges: %d", countResp.ProfileURL, countResp.BadgeCount)
		if countResp.CacheStatus == "hit" {
			result += "\n(cached)"
		}
		return mcp.NewToolResultText(result), nil
	}
}
