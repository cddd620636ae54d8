package common

import (
	"fmt"
	"log/slog"
)

// maxLoggedBody caps response bodies written to debug logs
const maxLoggedBody = 2048

func clip(body string) string {
	if len(body) <= maxLoggedBody {
		return body
	}
	return fmt.Sprintf("%s... (%d bytes)", body[:maxLoggedBody], len(body))
}

// LogAPIRequest logs an outgoing generation request
func LogAPIRequest(logger *slog.Logger, providerName, modelName string, messages []Message, config *GenerateOptions) {
	if logger == nil {
		return
	}

	args := []interface{}{
		"model", modelName,
		"message_count", len(messages),
	}
	if config != nil {
		if config.Temperature != nil {
			args = append(args, "temperature", *config.Temperature)
		}
		if config.MaxTokens != nil {
			args = append(args, "max_tokens", *config.MaxTokens)
		}
		if config.TopP != nil {
			args = append(args, "top_p", *config.TopP)
		}
	}

	logger.Debug(fmt.Sprintf("Sending prompt to %s", providerName), args...)
}

// LogHTTPResponse logs the status and size of a response
func LogHTTPResponse(logger *slog.Logger, statusCode int, bodyLength int) {
	if logger == nil {
		return
	}
	logger.Debug("Received response",
		"status_code", statusCode,
		"body_length", bodyLength)
}

// LogRawResponse logs a response body, clipped
func LogRawResponse(logger *slog.Logger, body string, statusCode int) {
	if logger == nil {
		return
	}
	logger.Debug("Raw response",
		"body", clip(body),
		"status_code", statusCode)
}

// LogTokenUsage logs token consumption reported by a provider
func LogTokenUsage(logger *slog.Logger, responseID string, usage Usage) {
	if logger == nil {
		return
	}
	logger.Debug("Token usage",
		"response_id", responseID,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens)
}

func LogRequestCompletion(logger *slog.Logger, contentLength int) {
	if logger == nil {
		return
	}
	logger.Debug("Request completed", "reply_length", contentLength)
}

func LogRequestExecution(logger *slog.Logger, url string, maxRetries int) {
	if logger == nil {
		return
	}
	logger.Debug("Executing request",
		"url", url,
		"max_retries", maxRetries)
}

// LogRequestFailure logs a request that failed after all retries
func LogRequestFailure(logger *slog.Logger, err error, maxRetries int) {
	if logger == nil {
		return
	}
	logger.Error("Request failed after retries",
		"error", err,
		"max_retries", maxRetries)
}

// LogJSONUnmarshalError logs an undecodable response body
func LogJSONUnmarshalError(logger *slog.Logger, err error, responseBody string) {
	if logger == nil {
		return
	}
	logger.Error("Failed to decode JSON response",
		"error", err,
		"response_body", clip(responseBody))
}
