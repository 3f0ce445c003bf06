package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"invois/internal/domain"
	"invois/internal/port"
)

const assistantSystemPrompt = `You are an invoicing assistant. You help the user draft invoices and quotes, suggest payment terms, and answer billing questions.
When the user asks you to create an invoice or a quote, call the create_document tool with the details you can extract from the conversation. Ask for missing essentials (customer, line items, the user's own business name) instead of guessing amounts.
Keep answers short and practical.`

// createDocumentSchema is the JSON schema for the create_document tool.
const createDocumentSchema = `{
  "type": "object",
  "properties": {
    "customer_name": {"type": "string", "description": "Name of the customer to bill"},
    "sender_name": {"type": "string", "description": "The user's own business name, shown as the document sender"},
    "document_type": {"type": "string", "enum": ["invoice", "quote"]},
    "line_items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "quantity": {"type": "number"},
          "unit_price": {"type": "number"}
        },
        "required": ["description", "quantity", "unit_price"]
      }
    },
    "discount_value": {"type": "number"},
    "discount_type": {"type": "string", "enum": ["amount", "percent"]},
    "tax_value": {"type": "number"},
    "tax_type": {"type": "string", "enum": ["amount", "percent"]},
    "due_in_days": {"type": "integer", "description": "Days until the document is due"},
    "notes": {"type": "string"}
  },
  "required": ["customer_name", "sender_name", "document_type", "line_items"]
}`

// draftTermsSchema is the JSON schema for the draft_terms tool.
const draftTermsSchema = `{
  "type": "object",
  "properties": {
    "due_in_days": {"type": "integer", "description": "Days the customer has to pay"},
    "late_fee_percent": {"type": "number", "description": "Monthly late fee on overdue balances, as a percentage"},
    "early_discount_percent": {"type": "number", "description": "Discount for paying within early_discount_days"},
    "early_discount_days": {"type": "integer"}
  },
  "required": ["due_in_days"]
}`

// maxToolRounds bounds the tool-call loop so a misbehaving model cannot spin.
const maxToolRounds = 3

// ChatRequest is the DTO for assistant chat requests. History carries prior
// turns so the conversation is stateless server-side.
type ChatRequest struct {
	Message string             `json:"message" binding:"required"`
	History []port.ChatMessage `json:"history"`
}

// ChatResult is the assistant's reply, plus the document if one was created
// during the turn.
type ChatResult struct {
	Reply    string           `json:"reply"`
	Document *domain.Document `json:"document,omitempty"`
}

// AssistantService drives the LLM-backed invoicing assistant.
type AssistantService interface {
	Chat(ctx context.Context, ownerID uuid.UUID, input ChatRequest) (*ChatResult, error)
}

type assistantService struct {
	chat        port.ChatClient
	docSvc      DocumentService
	customerSvc CustomerService
}

// NewAssistantService creates a new AssistantService implementation. A nil
// chat client means the assistant is not configured for this deployment.
func NewAssistantService(chat port.ChatClient, docSvc DocumentService, customerSvc CustomerService) AssistantService {
	return &assistantService{
		chat:        chat,
		docSvc:      docSvc,
		customerSvc: customerSvc,
	}
}

func (s *assistantService) Chat(ctx context.Context, ownerID uuid.UUID, input ChatRequest) (*ChatResult, error) {
	if s.chat == nil {
		return nil, domain.ErrAssistantUnavailable
	}

	messages := []port.ChatMessage{{Role: "system", Content: assistantSystemPrompt}}
	messages = append(messages, input.History...)
	messages = append(messages, port.ChatMessage{Role: "user", Content: input.Message})

	tools := []port.ToolDef{
		{
			Name:        "create_document",
			Description: "Create an invoice or quote for the user from structured details.",
			Parameters:  json.RawMessage(createDocumentSchema),
		},
		{
			Name:        "draft_terms",
			Description: "Draft standard payment terms text from a due period and optional fee or discount rates.",
			Parameters:  json.RawMessage(draftTermsSchema),
		},
	}

	result := &ChatResult{}

	for round := 0; round < maxToolRounds; round++ {
		out, err := s.chat.Complete(ctx, port.ChatInput{Messages: messages, Tools: tools})
		if err != nil {
			return nil, fmt.Errorf("assistantService.Chat: %w", err)
		}

		if len(out.ToolCalls) == 0 {
			result.Reply = out.Content
			return result, nil
		}

		// Echo the assistant turn with its tool calls intact; the API
		// rejects orphaned tool results.
		messages = append(messages, port.ChatMessage{
			Role:      "assistant",
			Content:   out.Content,
			ToolCalls: out.ToolCalls,
		})
		for _, call := range out.ToolCalls {
			reply := s.dispatch(ctx, ownerID, call, result)
			messages = append(messages, port.ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    reply,
			})
		}
	}

	// The model kept calling tools past the bound; surface whatever we have.
	if result.Document != nil {
		result.Reply = fmt.Sprintf("Created %s %s.", result.Document.DocumentType, result.Document.DocumentNumber)
	}
	return result, nil
}

// dispatch executes one tool call and returns the text fed back to the model.
func (s *assistantService) dispatch(ctx context.Context, ownerID uuid.UUID, call port.ToolCall, result *ChatResult) string {
	switch call.Name {
	case "create_document":
		doc, err := s.createFromToolCall(ctx, ownerID, call.Arguments)
		if err != nil {
			log.Printf("assistantService: create_document failed: %v", err)
			return fmt.Sprintf("document creation failed: %v", err)
		}
		result.Document = doc
		return fmt.Sprintf("created %s %s, total %.2f", doc.DocumentType, doc.DocumentNumber, doc.Total)
	case "draft_terms":
		terms, err := draftTerms(call.Arguments)
		if err != nil {
			return fmt.Sprintf("drafting terms failed: %v", err)
		}
		return terms
	default:
		return fmt.Sprintf("unknown tool %q", call.Name)
	}
}

// draftTermsArgs mirrors draftTermsSchema.
type draftTermsArgs struct {
	DueInDays            int     `json:"due_in_days"`
	LateFeePercent       float64 `json:"late_fee_percent"`
	EarlyDiscountPercent float64 `json:"early_discount_percent"`
	EarlyDiscountDays    int     `json:"early_discount_days"`
}

// draftTerms renders boilerplate payment terms deterministically so the model
// cannot invent rates the user never asked for.
func draftTerms(raw json.RawMessage) (string, error) {
	var args draftTermsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("parsing tool arguments: %w", err)
	}
	if args.DueInDays <= 0 {
		return "", fmt.Errorf("due_in_days must be positive")
	}

	terms := fmt.Sprintf("Payment is due within %d days of the issue date.", args.DueInDays)
	if args.EarlyDiscountPercent > 0 && args.EarlyDiscountDays > 0 {
		terms += fmt.Sprintf(" A %.1f%% discount applies to payments received within %d days.",
			args.EarlyDiscountPercent, args.EarlyDiscountDays)
	}
	if args.LateFeePercent > 0 {
		terms += fmt.Sprintf(" Overdue balances accrue a late fee of %.1f%% per month.", args.LateFeePercent)
	}
	return terms, nil
}

// createDocumentArgs mirrors createDocumentSchema.
type createDocumentArgs struct {
	CustomerName string `json:"customer_name"`
	SenderName   string `json:"sender_name"`
	DocumentType string `json:"document_type"`
	LineItems    []struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
	} `json:"line_items"`
	DiscountValue float64 `json:"discount_value"`
	DiscountType  string  `json:"discount_type"`
	TaxValue      float64 `json:"tax_value"`
	TaxType       string  `json:"tax_type"`
	DueInDays     int     `json:"due_in_days"`
	Notes         string  `json:"notes"`
}

func (s *assistantService) createFromToolCall(ctx context.Context, ownerID uuid.UUID, raw json.RawMessage) (*domain.Document, error) {
	var args createDocumentArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parsing tool arguments: %w", err)
	}

	customer, err := s.customerSvc.ResolveOrCreate(ctx, ownerID, args.CustomerName)
	if err != nil {
		return nil, err
	}

	input := &CreateDocumentInput{
		OwnerID:       ownerID,
		SenderName:    args.SenderName,
		DocumentType:  domain.DocumentType(args.DocumentType),
		CustomerID:    &customer.ID,
		ClientName:    customer.Name,
		ClientEmail:   customer.Email,
		ClientAddress: customer.Address,
		DiscountValue: domain.FlexFloat(args.DiscountValue),
		DiscountType:  domain.AmountType(args.DiscountType),
		TaxValue:      domain.FlexFloat(args.TaxValue),
		TaxType:       domain.AmountType(args.TaxType),
		Notes:         args.Notes,
	}
	for _, it := range args.LineItems {
		input.LineItems = append(input.LineItems, LineItemInput{
			Description: it.Description,
			Quantity:    domain.FlexFloat(it.Quantity),
			UnitPrice:   domain.FlexFloat(it.UnitPrice),
		})
	}
	// A due date is mandatory on every document; net 30 when the model
	// gives no due period.
	dueInDays := args.DueInDays
	if dueInDays <= 0 {
		dueInDays = 30
	}
	input.DueDate = time.Now().UTC().AddDate(0, 0, dueInDays)

	return s.docSvc.Create(ctx, input)
}
