package repository

import (
	"context"
	"encoding/json"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const referralFeesProIDIndex = "pro_id-index"

type referralFeeItem struct {
	ID                string `dynamodbav:"id"`
	QuoteID           string `dynamodbav:"quote_id"`
	RequestID         string `dynamodbav:"request_id"`
	ProID             string `dynamodbav:"pro_id"`
	Amount            string `dynamodbav:"amount"`
	Status            string `dynamodbav:"status"`
	PaymentID         string `dynamodbav:"payment_id,omitempty"`
	PaidAt            string `dynamodbav:"paid_at,omitempty"`
	PaymentPayloadRaw string `dynamodbav:"payment_payload_raw,omitempty"`
	CreatedAt         string `dynamodbav:"created_at"`
	UpdatedAt         string `dynamodbav:"updated_at"`
}

// ReferralFeeDynamoRepository persists ReferralFee entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string, equal to the quote id)
//   - GSI: pro_id-index (PK: pro_id)
//
// The provider response is stored as a JSON string for audit.
type ReferralFeeDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.IReferralFeeRepository = (*ReferralFeeDynamoRepository)(nil)

func NewReferralFeeDynamoRepository(ddb *dynamodb.Client, tables Tables) *ReferralFeeDynamoRepository {
	return &ReferralFeeDynamoRepository{ddb: ddb, tables: tables.withDefaults()}
}

func (r *ReferralFeeDynamoRepository) GetByID(ctx context.Context, id string) (entities.ReferralFee, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.ReferralFees),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.ReferralFee{}, err
	}
	if len(out.Item) == 0 {
		return entities.ReferralFee{}, nil
	}
	var it referralFeeItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.ReferralFee{}, err
	}
	return fromReferralFeeItem(it), nil
}

func (r *ReferralFeeDynamoRepository) ListByPro(ctx context.Context, proID string) ([]entities.ReferralFee, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tables.ReferralFees),
		IndexName:                 aws.String(referralFeesProIDIndex),
		KeyConditionExpression:    aws.String("#pro_id = :pro"),
		ExpressionAttributeNames:  map[string]string{"#pro_id": "pro_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":pro": str(proID)},
	})
	var items []entities.ReferralFee
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, av := range out.Items {
			var it referralFeeItem
			if err := attributevalue.UnmarshalMap(av, &it); err != nil {
				return nil, err
			}
			items = append(items, fromReferralFeeItem(it))
		}
	}
	return items, nil
}

func (r *ReferralFeeDynamoRepository) SetAmount(ctx context.Context, id string, amount decimal.Decimal, now time.Time) (entities.ReferralFee, error) {
	return r.updatePending(ctx, id, "SET #amount = :amount, #updated_at = :updated_at",
		map[string]string{"#amount": "amount"},
		map[string]types.AttributeValue{
			":amount":     str(amount.String()),
			":updated_at": str(formatTime(now)),
		})
}

func (r *ReferralFeeDynamoRepository) MarkPaid(ctx context.Context, id, paymentID string, payload json.RawMessage, now time.Time) (entities.ReferralFee, error) {
	return r.updatePending(ctx, id,
		"SET #status = :paid, #payment_id = :payment_id, #paid_at = :paid_at, #payment_payload_raw = :payload, #updated_at = :updated_at",
		map[string]string{
			"#payment_id":          "payment_id",
			"#paid_at":             "paid_at",
			"#payment_payload_raw": "payment_payload_raw",
		},
		map[string]types.AttributeValue{
			":paid":       str(string(entities.ReferralFeeStatusPaid)),
			":payment_id": str(paymentID),
			":paid_at":    str(formatTime(now)),
			":payload":    str(string(payload)),
			":updated_at": str(formatTime(now)),
		})
}

func (r *ReferralFeeDynamoRepository) updatePending(ctx context.Context, id, update string, names map[string]string, values map[string]types.AttributeValue) (entities.ReferralFee, error) {
	values[":pending"] = str(string(entities.ReferralFeeStatusPending))
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tables.ReferralFees),
		Key:                 keyOf(id),
		ConditionExpression: aws.String("attribute_exists(#id) AND #status = :pending"),
		UpdateExpression:    aws.String(update),
		ExpressionAttributeNames: mergeNames(names, map[string]string{
			"#id":         "id",
			"#status":     "status",
			"#updated_at": "updated_at",
		}),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return entities.ReferralFee{}, conditionFailed(err, interfaces.EntityReferralFee)
	}
	var it referralFeeItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.ReferralFee{}, err
	}
	return fromReferralFeeItem(it), nil
}

func toReferralFeeItem(f entities.ReferralFee) referralFeeItem {
	return referralFeeItem{
		ID:                f.ID,
		QuoteID:           f.QuoteID,
		RequestID:         f.RequestID,
		ProID:             f.ProID,
		Amount:            f.Amount.String(),
		Status:            string(f.Status),
		PaymentID:         f.PaymentID,
		PaidAt:            formatTimePtr(f.PaidAt),
		PaymentPayloadRaw: string(f.PaymentPayloadRaw),
		CreatedAt:         formatTime(f.CreatedAt),
		UpdatedAt:         formatTime(f.UpdatedAt),
	}
}

func fromReferralFeeItem(it referralFeeItem) entities.ReferralFee {
	f := entities.ReferralFee{
		ID:        it.ID,
		QuoteID:   it.QuoteID,
		RequestID: it.RequestID,
		ProID:     it.ProID,
		Amount:    parseDecimal(it.Amount),
		Status:    entities.ReferralFeeStatus(it.Status),
		PaymentID: it.PaymentID,
		PaidAt:    parseTimePtr(it.PaidAt),
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}
	if it.PaymentPayloadRaw != "" {
		f.PaymentPayloadRaw = json.RawMessage(it.PaymentPayloadRaw)
	}
	return f
}
