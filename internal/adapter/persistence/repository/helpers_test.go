package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"automarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return fmt.Errorf("operation error DynamoDB: TransactWriteItems: %w", &types.TransactionCanceledException{
		Message:             aws.String("Transaction cancelled"),
		CancellationReasons: reasons,
	})
}

func TestTxConditionFailed(t *testing.T) {
	order := []string{interfaces.EntityLead, interfaces.EntityServiceRequest}

	tests := []struct {
		name   string
		err    error
		entity string
	}{
		{"condition on request", cancelled("None", conditionalCheckFailed), interfaces.EntityServiceRequest},
		{"condition on lead", cancelled(conditionalCheckFailed, "None"), interfaces.EntityLead},
		{"conflict on request", cancelled("None", transactionConflict), interfaces.EntityServiceRequest},
		{"conflict on lead", cancelled(transactionConflict, "None"), interfaces.EntityLead},
		{"condition wins over an earlier conflict", cancelled(transactionConflict, conditionalCheckFailed), interfaces.EntityServiceRequest},
		{"throttling stays raw", cancelled("None", "ThrottlingError"), ""},
		{"reason beyond the known items", cancelled("None", "None", conditionalCheckFailed), ""},
		{"not a transaction error", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := txConditionFailed(tt.err, order...)
			if entity := interfaces.FailedEntity(got); entity != tt.entity {
				t.Fatalf("expected failed entity %q, got %q (%v)", tt.entity, entity, got)
			}
			if tt.entity == "" && got != tt.err {
				t.Fatalf("expected the original error back, got %v", got)
			}
		})
	}
}

func TestConditionFailed(t *testing.T) {
	t.Run("conditional check", func(t *testing.T) {
		err := conditionFailed(&types.ConditionalCheckFailedException{Message: aws.String("nope")}, interfaces.EntityQuote)
		if !errors.Is(err, interfaces.ErrConditionFailed) || interfaces.FailedEntity(err) != interfaces.EntityQuote {
			t.Fatalf("expected quote condition failure, got %v", err)
		}
	})

	t.Run("conflict with a running transaction", func(t *testing.T) {
		err := conditionFailed(&types.TransactionConflictException{Message: aws.String("busy")}, interfaces.EntityServiceRequest)
		if interfaces.FailedEntity(err) != interfaces.EntityServiceRequest {
			t.Fatalf("expected request condition failure, got %v", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		raw := errors.New("timeout")
		if got := conditionFailed(raw, interfaces.EntityQuote); got != raw {
			t.Fatalf("expected raw error, got %v", got)
		}
	})
}

type fakePager struct {
	pages [][]map[string]types.AttributeValue
	err   error
	read  int
}

func (f *fakePager) HasMorePages() bool { return f.read < len(f.pages) }

func (f *fakePager) NextPage(context.Context, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.read]
	f.read++
	return &dynamodb.QueryOutput{Items: page}, nil
}

func itemsWithIDs(ids ...string) []map[string]types.AttributeValue {
	out := make([]map[string]types.AttributeValue, len(ids))
	for i, id := range ids {
		out[i] = map[string]types.AttributeValue{"id": str(id)}
	}
	return out
}

func TestCollectItems(t *testing.T) {
	t.Run("keeps reading past pages emptied by the filter", func(t *testing.T) {
		p := &fakePager{pages: [][]map[string]types.AttributeValue{
			itemsWithIDs(),
			itemsWithIDs(),
			itemsWithIDs("req-1"),
			itemsWithIDs("req-2", "req-3"),
		}}
		got, err := collectItems(context.Background(), p, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0]["id"].(*types.AttributeValueMemberS).Value != "req-1" {
			t.Fatalf("unexpected items: %v", got)
		}
		if p.read != 4 {
			t.Fatalf("expected 4 pages read, got %d", p.read)
		}
	})

	t.Run("stops once the limit is reached", func(t *testing.T) {
		p := &fakePager{pages: [][]map[string]types.AttributeValue{
			itemsWithIDs("req-1", "req-2"),
			itemsWithIDs("req-3"),
		}}
		got, err := collectItems(context.Background(), p, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || p.read != 1 {
			t.Fatalf("expected 2 items from 1 page, got %d items from %d pages", len(got), p.read)
		}
	})

	t.Run("no limit reads everything", func(t *testing.T) {
		p := &fakePager{pages: [][]map[string]types.AttributeValue{
			itemsWithIDs("req-1"),
			itemsWithIDs("req-2"),
		}}
		got, err := collectItems(context.Background(), p, 0)
		if err != nil || len(got) != 2 {
			t.Fatalf("expected 2 items, got %d (%v)", len(got), err)
		}
	})

	t.Run("page error", func(t *testing.T) {
		p := &fakePager{pages: [][]map[string]types.AttributeValue{itemsWithIDs("req-1")}, err: errors.New("throttled")}
		if _, err := collectItems(context.Background(), p, 1); err == nil {
			t.Fatal("expected error")
		}
	})
}
