// Package mcpadapter exposes shelf-life estimation and ingredient parsing
// as Model Context Protocol tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/ports"
)

type ServerConfig struct {
	Expiry  ports.ExpiryPredictor
	Scanner ports.InventoryScanner
	Version string
	Logger  *slog.Logger
}

func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := server.NewMCPServer("pantry-shelflife", ver, server.WithToolCapabilities(false))
	if cfg.Expiry != nil {
		registerPredictExpiryTool(s, cfg.Expiry, logger)
	}
	if cfg.Scanner != nil {
		registerScanIngredientTextTool(s, cfg.Scanner, logger)
	}
	return s
}

type expiryResult struct {
	PredictedExpiry time.Time            `json:"predictedExpiry"`
	Days            int                  `json:"days"`
	ReferenceDate   time.Time            `json:"referenceDate"`
	ReferenceType   domain.ReferenceType `json:"referenceType"`
	Source          string               `json:"source"`
}

func registerPredictExpiryTool(s *server.MCPServer, predictor ports.ExpiryPredictor, logger *slog.Logger) {
	tool := mcp.NewTool("predict_expiry",
		mcp.WithDescription("Estimate when a food item expires from its name, storage location and purchase date. Opened items count from the open date; a best-before date caps the estimate outside the freezer."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Food name as written on the pack or receipt"),
		),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("Storage location: fridge, freezer or pantry"),
		),
		mcp.WithString("purchased_date",
			mcp.Required(),
			mcp.Description("Purchase date, YYYY-MM-DD"),
		),
		mcp.WithString("generic_name",
			mcp.Description("Plain food name, e.g. 'chicken breast'"),
		),
		mcp.WithString("open_date",
			mcp.Description("Date the pack was opened, YYYY-MM-DD"),
		),
		mcp.WithString("best_before_date",
			mcp.Description("Best-before date printed on the pack, YYYY-MM-DD"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		location, err := req.RequireString("location")
		if err != nil {
			return mcp.NewToolResultError("location is required"), nil
		}
		purchased, err := req.RequireString("purchased_date")
		if err != nil {
			return mcp.NewToolResultError("purchased_date is required"), nil
		}

		est, err := predictor.Predict(ctx, domain.ExpiryRequest{
			Name:           name,
			GenericName:    req.GetString("generic_name", ""),
			Location:       location,
			PurchasedDate:  purchased,
			OpenDate:       req.GetString("open_date", ""),
			BestBeforeDate: req.GetString("best_before_date", ""),
		})
		if err != nil {
			logger.Warn("mcp.predict_expiry.failed", "name", name, "error", err)
			return mcp.NewToolResultError(toolErrorMessage(err)), nil
		}
		return jsonResult(expiryResult{
			PredictedExpiry: domain.NewCalendarDate(est.PredictedExpiry).Time,
			Days:            est.Days,
			ReferenceDate:   domain.NewCalendarDate(est.ReferenceDate).Time,
			ReferenceType:   est.ReferenceType,
			Source:          est.Source.Label(),
		})
	})
}

func registerScanIngredientTextTool(s *server.MCPServer, scanner ports.InventoryScanner, logger *slog.Logger) {
	tool := mcp.NewTool("scan_ingredient_text",
		mcp.WithDescription("Parse free-text ingredient or shopping lines into normalized inventory items with quantities, units, storage locations and predicted expiry dates."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Ingredient lines, e.g. '2 cartons of milk, 500g minced beef'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}
		batch, err := scanner.Scan(ctx, domain.ScanRequest{Mode: domain.ModeText, Text: text})
		if err != nil {
			logger.Warn("mcp.scan_ingredient_text.failed", "error", err)
			return mcp.NewToolResultError(toolErrorMessage(err)), nil
		}
		return jsonResult(batch)
	})
}

func toolErrorMessage(err error) string {
	if outErr, ok := domain.AsModelOutputError(err); ok {
		return fmt.Sprintf("model output could not be recovered at stage %s", outErr.Stage)
	}
	return err.Error()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
