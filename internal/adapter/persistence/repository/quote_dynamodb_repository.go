package repository

import (
	"context"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	quotesRequestIDIndex = "request_id-index"
	quotesProIDIndex     = "pro_id-index"
	quotesTimerIndex     = "status-confirmation_timer_expires_at-index"
)

type quoteItem struct {
	ID                         string `dynamodbav:"id"`
	RequestID                  string `dynamodbav:"request_id"`
	ProID                      string `dynamodbav:"pro_id"`
	EstimatedPrice             string `dynamodbav:"estimated_price"`
	Description                string `dynamodbav:"description"`
	Status                     string `dynamodbav:"status"`
	ConfirmationTimerMinutes   int    `dynamodbav:"confirmation_timer_minutes"`
	ConfirmationTimerExpiresAt *int64 `dynamodbav:"confirmation_timer_expires_at,omitempty"`
	SelectedAt                 string `dynamodbav:"selected_at,omitempty"`
	ConfirmedAt                string `dynamodbav:"confirmed_at,omitempty"`
	CreatedAt                  string `dynamodbav:"created_at"`
	UpdatedAt                  string `dynamodbav:"updated_at"`
}

// QuoteDynamoRepository persists Quote entities and owns the transactions that
// move a quote together with its request, appointment and referral fee.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: request_id-index (PK: request_id)
//   - GSI: pro_id-index (PK: pro_id)
//   - GSI: status-confirmation_timer_expires_at-index (PK: status, SK: confirmation_timer_expires_at number)
//
// The timer index is sparse: only selected quotes carry the sort key.
type QuoteDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.IQuoteRepository = (*QuoteDynamoRepository)(nil)

func NewQuoteDynamoRepository(ddb *dynamodb.Client, tables Tables) *QuoteDynamoRepository {
	return &QuoteDynamoRepository{ddb: ddb, tables: tables.withDefaults()}
}

// Create stores a submitted quote only while its pro holds a live or
// permanent lock on the request.
func (r *QuoteDynamoRepository) Create(ctx context.Context, q entities.Quote, now time.Time) (entities.Quote, error) {
	av, err := attributevalue.MarshalMap(toQuoteItem(q))
	if err != nil {
		return entities.Quote{}, err
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{ConditionCheck: &types.ConditionCheck{
				TableName: aws.String(r.tables.ServiceRequests),
				Key:       keyOf(q.RequestID),
				ConditionExpression: aws.String("#accepted_pro_id = :pro AND #status IN (:accepted, :scheduled) " +
					"AND (attribute_not_exists(#accept_expires_at) OR #accept_expires_at > :now)"),
				ExpressionAttributeNames: map[string]string{
					"#accepted_pro_id":   "accepted_pro_id",
					"#status":            "status",
					"#accept_expires_at": "accept_expires_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":pro":       str(q.ProID),
					":accepted":  str(string(entities.ServiceRequestStatusAccepted)),
					":scheduled": str(string(entities.ServiceRequestStatusScheduled)),
					":now":       num(millis(now)),
				},
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tables.Quotes),
				Item:                     av,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
		},
	})
	if err != nil {
		return entities.Quote{}, txConditionFailed(err, interfaces.EntityServiceRequest, interfaces.EntityQuote)
	}
	return q, nil
}

func (r *QuoteDynamoRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Quotes),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Quote{}, err
	}
	if len(out.Item) == 0 {
		return entities.Quote{}, nil
	}
	var it quoteItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Quote{}, err
	}
	return fromQuoteItem(it), nil
}

func (r *QuoteDynamoRepository) ListByRequest(ctx context.Context, requestID string) ([]entities.Quote, error) {
	return r.query(ctx, quotesRequestIDIndex, "request_id", requestID)
}

func (r *QuoteDynamoRepository) ListByPro(ctx context.Context, proID string) ([]entities.Quote, error) {
	return r.query(ctx, quotesProIDIndex, "pro_id", proID)
}

// Select is guarded by the request's pending_quote_id: the transaction only
// commits while no other quote of the request awaits confirmation.
func (r *QuoteDynamoRepository) Select(ctx context.Context, cmd interfaces.SelectQuoteCommand) (entities.Quote, error) {
	apt, err := attributevalue.MarshalMap(toAppointmentItem(cmd.Appointment))
	if err != nil {
		return entities.Quote{}, err
	}
	fee, err := attributevalue.MarshalMap(toReferralFeeItem(cmd.Fee))
	if err != nil {
		return entities.Quote{}, err
	}
	updatedAt := str(formatTime(cmd.Now))

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:           aws.String(r.tables.Quotes),
				Key:                 keyOf(cmd.QuoteID),
				ConditionExpression: aws.String("attribute_exists(#id) AND #status = :submitted AND #request_id = :rid"),
				UpdateExpression: aws.String("SET #status = :pending, #confirmation_timer_expires_at = :expires_at, " +
					"#selected_at = :selected_at, #updated_at = :updated_at"),
				ExpressionAttributeNames: map[string]string{
					"#id":                            "id",
					"#status":                        "status",
					"#request_id":                    "request_id",
					"#confirmation_timer_expires_at": "confirmation_timer_expires_at",
					"#selected_at":                   "selected_at",
					"#updated_at":                    "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":submitted":   str(string(entities.QuoteStatusSubmitted)),
					":pending":     str(string(entities.QuoteStatusPendingConfirmation)),
					":rid":         str(cmd.RequestID),
					":expires_at":  num(millis(cmd.ExpiresAt)),
					":selected_at": str(formatTime(cmd.Now)),
					":updated_at":  updatedAt,
				},
			}},
			{Update: &types.Update{
				TableName: aws.String(r.tables.ServiceRequests),
				Key:       keyOf(cmd.RequestID),
				ConditionExpression: aws.String("attribute_exists(#id) AND #customer_id = :cid AND #status = :accepted " +
					"AND attribute_not_exists(#pending_quote_id) AND #accepted_pro_id = :pro AND #accept_expires_at > :now"),
				UpdateExpression: aws.String("SET #pending_quote_id = :qid, #updated_at = :updated_at"),
				ExpressionAttributeNames: map[string]string{
					"#id":                "id",
					"#customer_id":       "customer_id",
					"#status":            "status",
					"#pending_quote_id":  "pending_quote_id",
					"#accepted_pro_id":   "accepted_pro_id",
					"#accept_expires_at": "accept_expires_at",
					"#updated_at":        "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":cid":        str(cmd.CustomerID),
					":accepted":   str(string(entities.ServiceRequestStatusAccepted)),
					":pro":        str(cmd.ProID),
					":now":        num(millis(cmd.Now)),
					":qid":        str(cmd.QuoteID),
					":updated_at": updatedAt,
				},
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tables.Appointments),
				Item:                     apt,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tables.ReferralFees),
				Item:                     fee,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
		},
	})
	if err != nil {
		return entities.Quote{}, txConditionFailed(err,
			interfaces.EntityQuote, interfaces.EntityServiceRequest, interfaces.EntityAppointment, interfaces.EntityReferralFee)
	}
	return r.GetByID(ctx, cmd.QuoteID)
}

// Confirm commits only while now is strictly before the stored expiry. The
// request lock becomes permanent: accept_expires_at is removed.
func (r *QuoteDynamoRepository) Confirm(ctx context.Context, cmd interfaces.ConfirmQuoteCommand) (entities.Quote, error) {
	updatedAt := str(formatTime(cmd.Now))
	_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:           aws.String(r.tables.Quotes),
				Key:                 keyOf(cmd.QuoteID),
				ConditionExpression: aws.String("#status = :pending AND #pro_id = :pro AND #confirmation_timer_expires_at > :now"),
				UpdateExpression:    aws.String("SET #status = :confirmed, #confirmed_at = :confirmed_at, #updated_at = :updated_at"),
				ExpressionAttributeNames: map[string]string{
					"#status":                        "status",
					"#pro_id":                        "pro_id",
					"#confirmation_timer_expires_at": "confirmation_timer_expires_at",
					"#confirmed_at":                  "confirmed_at",
					"#updated_at":                    "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":pending":      str(string(entities.QuoteStatusPendingConfirmation)),
					":confirmed":    str(string(entities.QuoteStatusConfirmed)),
					":pro":          str(cmd.ProID),
					":now":          num(millis(cmd.Now)),
					":confirmed_at": str(formatTime(cmd.Now)),
					":updated_at":   updatedAt,
				},
			}},
			{Update: &types.Update{
				TableName:           aws.String(r.tables.Appointments),
				Key:                 keyOf(cmd.QuoteID),
				ConditionExpression: aws.String("#status = :pending"),
				UpdateExpression:    aws.String("SET #status = :scheduled, #updated_at = :updated_at"),
				ExpressionAttributeNames: map[string]string{
					"#status":     "status",
					"#updated_at": "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":pending":    str(string(entities.AppointmentStatusPendingConfirmation)),
					":scheduled":  str(string(entities.AppointmentStatusScheduled)),
					":updated_at": updatedAt,
				},
			}},
			{Update: &types.Update{
				TableName:           aws.String(r.tables.ServiceRequests),
				Key:                 keyOf(cmd.RequestID),
				ConditionExpression: aws.String("#pending_quote_id = :qid"),
				UpdateExpression: aws.String("SET #status = :scheduled, #accepted_pro_id = :pro, #updated_at = :updated_at " +
					"REMOVE #pending_quote_id, #accept_expires_at"),
				ExpressionAttributeNames: map[string]string{
					"#pending_quote_id":  "pending_quote_id",
					"#status":            "status",
					"#accepted_pro_id":   "accepted_pro_id",
					"#accept_expires_at": "accept_expires_at",
					"#updated_at":        "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":qid":        str(cmd.QuoteID),
					":scheduled":  str(string(entities.ServiceRequestStatusScheduled)),
					":pro":        str(cmd.ProID),
					":updated_at": updatedAt,
				},
			}},
		},
	})
	if err != nil {
		return entities.Quote{}, txConditionFailed(err,
			interfaces.EntityQuote, interfaces.EntityAppointment, interfaces.EntityServiceRequest)
	}
	return r.GetByID(ctx, cmd.QuoteID)
}

func (r *QuoteDynamoRepository) Decline(ctx context.Context, id, proID string, now time.Time) (entities.Quote, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tables.Quotes),
		Key:                 keyOf(id),
		ConditionExpression: aws.String("attribute_exists(#id) AND #pro_id = :pro AND #status = :submitted"),
		UpdateExpression:    aws.String("SET #status = :declined, #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#pro_id":     "pro_id",
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pro":        str(proID),
			":submitted":  str(string(entities.QuoteStatusSubmitted)),
			":declined":   str(string(entities.QuoteStatusDeclined)),
			":updated_at": str(formatTime(now)),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return entities.Quote{}, conditionFailed(err, interfaces.EntityQuote)
	}
	var it quoteItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Quote{}, err
	}
	return fromQuoteItem(it), nil
}

func (r *QuoteDynamoRepository) ListLapsed(ctx context.Context, now time.Time, limit int) ([]entities.Quote, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Quotes),
		IndexName:              aws.String(quotesTimerIndex),
		KeyConditionExpression: aws.String("#status = :pending AND #confirmation_timer_expires_at <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#status":                        "status",
			"#confirmation_timer_expires_at": "confirmation_timer_expires_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": str(string(entities.QuoteStatusPendingConfirmation)),
			":now":     num(millis(now)),
		},
		Limit: aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, err
	}
	return unmarshalQuotes(out.Items)
}

func (r *QuoteDynamoRepository) ListAwaitingConfirmation(ctx context.Context) ([]entities.Quote, error) {
	return r.query(ctx, quotesTimerIndex, "status", string(entities.QuoteStatusPendingConfirmation))
}

// Expire runs the cascade for one lapsed quote. Siblings are only written when
// they are still in the state the cascade moves them from; each write carries
// that state as its condition so a concurrent change aborts the whole unit.
func (r *QuoteDynamoRepository) Expire(ctx context.Context, q entities.Quote, now time.Time) (bool, error) {
	updatedAt := str(formatTime(now))
	items := []types.TransactWriteItem{
		{Update: &types.Update{
			TableName:           aws.String(r.tables.Quotes),
			Key:                 keyOf(q.ID),
			ConditionExpression: aws.String("#status = :pending AND #confirmation_timer_expires_at <= :now"),
			UpdateExpression:    aws.String("SET #status = :expired, #updated_at = :updated_at"),
			ExpressionAttributeNames: map[string]string{
				"#status":                        "status",
				"#confirmation_timer_expires_at": "confirmation_timer_expires_at",
				"#updated_at":                    "updated_at",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pending":    str(string(entities.QuoteStatusPendingConfirmation)),
				":expired":    str(string(entities.QuoteStatusExpired)),
				":now":        num(millis(now)),
				":updated_at": updatedAt,
			},
		}},
	}
	order := []string{interfaces.EntityQuote}

	apt, err := r.getStatus(ctx, r.tables.Appointments, q.ID)
	if err != nil {
		return false, err
	}
	if apt == string(entities.AppointmentStatusPendingConfirmation) {
		items = append(items, statusMove(r.tables.Appointments, q.ID, apt, string(entities.AppointmentStatusExpired), updatedAt))
		order = append(order, interfaces.EntityAppointment)
	}

	fee, err := r.getStatus(ctx, r.tables.ReferralFees, q.ID)
	if err != nil {
		return false, err
	}
	if fee == string(entities.ReferralFeeStatusPending) {
		items = append(items, statusMove(r.tables.ReferralFees, q.ID, fee, string(entities.ReferralFeeStatusExpired), updatedAt))
		order = append(order, interfaces.EntityReferralFee)
	}

	pending, err := r.getPendingQuote(ctx, q.RequestID)
	if err != nil {
		return false, err
	}
	if pending == q.ID {
		items = append(items, types.TransactWriteItem{Update: &types.Update{
			TableName:           aws.String(r.tables.ServiceRequests),
			Key:                 keyOf(q.RequestID),
			ConditionExpression: aws.String("#pending_quote_id = :qid"),
			UpdateExpression:    aws.String("SET #updated_at = :updated_at REMOVE #pending_quote_id"),
			ExpressionAttributeNames: map[string]string{
				"#pending_quote_id": "pending_quote_id",
				"#updated_at":       "updated_at",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":qid":        str(q.ID),
				":updated_at": updatedAt,
			},
		}})
		order = append(order, interfaces.EntityServiceRequest)
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		err = txConditionFailed(err, order...)
		if interfaces.FailedEntity(err) == interfaces.EntityQuote {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func statusMove(table, id, from, to string, updatedAt types.AttributeValue) types.TransactWriteItem {
	return types.TransactWriteItem{Update: &types.Update{
		TableName:           aws.String(table),
		Key:                 keyOf(id),
		ConditionExpression: aws.String("#status = :from"),
		UpdateExpression:    aws.String("SET #status = :to, #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from":       str(from),
			":to":         str(to),
			":updated_at": updatedAt,
		},
	}}
}

func (r *QuoteDynamoRepository) getStatus(ctx context.Context, table, id string) (string, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(table),
		Key:                      keyOf(id),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     aws.String("#status"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
	})
	if err != nil {
		return "", err
	}
	var it struct {
		Status string `dynamodbav:"status"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return "", err
	}
	return it.Status, nil
}

func (r *QuoteDynamoRepository) getPendingQuote(ctx context.Context, requestID string) (string, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tables.ServiceRequests),
		Key:                      keyOf(requestID),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     aws.String("#pending_quote_id"),
		ExpressionAttributeNames: map[string]string{"#pending_quote_id": "pending_quote_id"},
	})
	if err != nil {
		return "", err
	}
	var it struct {
		PendingQuoteID string `dynamodbav:"pending_quote_id"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return "", err
	}
	return it.PendingQuoteID, nil
}

func (r *QuoteDynamoRepository) query(ctx context.Context, index, attr, value string) ([]entities.Quote, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tables.Quotes),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": str(value)},
	})
	var items []entities.Quote
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		page, err := unmarshalQuotes(out.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

func unmarshalQuotes(raw []map[string]types.AttributeValue) ([]entities.Quote, error) {
	items := make([]entities.Quote, 0, len(raw))
	for _, av := range raw {
		var it quoteItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		items = append(items, fromQuoteItem(it))
	}
	return items, nil
}

func toQuoteItem(q entities.Quote) quoteItem {
	return quoteItem{
		ID:                         q.ID,
		RequestID:                  q.RequestID,
		ProID:                      q.ProID,
		EstimatedPrice:             q.EstimatedPrice.String(),
		Description:                q.Description,
		Status:                     string(q.Status),
		ConfirmationTimerMinutes:   q.ConfirmationTimerMinutes,
		ConfirmationTimerExpiresAt: millisPtr(q.ConfirmationTimerExpiresAt),
		SelectedAt:                 formatTimePtr(q.SelectedAt),
		ConfirmedAt:                formatTimePtr(q.ConfirmedAt),
		CreatedAt:                  formatTime(q.CreatedAt),
		UpdatedAt:                  formatTime(q.UpdatedAt),
	}
}

func fromQuoteItem(it quoteItem) entities.Quote {
	return entities.Quote{
		ID:                         it.ID,
		RequestID:                  it.RequestID,
		ProID:                      it.ProID,
		EstimatedPrice:             parseDecimal(it.EstimatedPrice),
		Description:                it.Description,
		Status:                     entities.QuoteStatus(it.Status),
		ConfirmationTimerMinutes:   it.ConfirmationTimerMinutes,
		ConfirmationTimerExpiresAt: fromMillis(it.ConfirmationTimerExpiresAt),
		SelectedAt:                 parseTimePtr(it.SelectedAt),
		ConfirmedAt:                parseTimePtr(it.ConfirmedAt),
		CreatedAt:                  parseTime(it.CreatedAt),
		UpdatedAt:                  parseTime(it.UpdatedAt),
	}
}
