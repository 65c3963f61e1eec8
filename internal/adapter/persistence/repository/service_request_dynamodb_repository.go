package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	serviceRequestsCustomerIDIndex = "customer_id-index"
	serviceRequestsLockIndex       = "status-accept_expires_at-index"
)

type serviceRequestItem struct {
	ID              string `dynamodbav:"id"`
	CustomerID      string `dynamodbav:"customer_id"`
	Vehicle         string `dynamodbav:"vehicle"`
	CategoryID      string `dynamodbav:"category_id"`
	Address         string `dynamodbav:"address"`
	Zip             string `dynamodbav:"zip"`
	Status          string `dynamodbav:"status"`
	AcceptedProID   string `dynamodbav:"accepted_pro_id,omitempty"`
	AcceptExpiresAt *int64 `dynamodbav:"accept_expires_at,omitempty"`
	PendingQuoteID  string `dynamodbav:"pending_quote_id,omitempty"`
	CreatedAt       string `dynamodbav:"created_at"`
	UpdatedAt       string `dynamodbav:"updated_at"`
}

// ServiceRequestDynamoRepository persists ServiceRequest entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: customer_id-index (PK: customer_id)
//   - GSI: status-accept_expires_at-index (PK: status, SK: accept_expires_at number)
//
// The job lock lives on the request item. accept_expires_at is stored in Unix
// milliseconds so the acquire condition compares it atomically.
type ServiceRequestDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.IServiceRequestRepository = (*ServiceRequestDynamoRepository)(nil)

func NewServiceRequestDynamoRepository(ddb *dynamodb.Client, tables Tables) *ServiceRequestDynamoRepository {
	return &ServiceRequestDynamoRepository{ddb: ddb, tables: tables.withDefaults()}
}

func (r *ServiceRequestDynamoRepository) Create(ctx context.Context, sr entities.ServiceRequest) (entities.ServiceRequest, error) {
	av, err := attributevalue.MarshalMap(toServiceRequestItem(sr))
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tables.ServiceRequests),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		return entities.ServiceRequest{}, conditionFailed(err, interfaces.EntityServiceRequest)
	}
	return sr, nil
}

func (r *ServiceRequestDynamoRepository) GetByID(ctx context.Context, id string) (entities.ServiceRequest, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.ServiceRequests),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	if len(out.Item) == 0 {
		return entities.ServiceRequest{}, nil
	}
	var it serviceRequestItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.ServiceRequest{}, err
	}
	return fromServiceRequestItem(it), nil
}

func (r *ServiceRequestDynamoRepository) ListByCustomer(ctx context.Context, customerID string) ([]entities.ServiceRequest, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.ServiceRequests),
		IndexName:              aws.String(serviceRequestsCustomerIDIndex),
		KeyConditionExpression: aws.String("customer_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": str(customerID),
		},
	})
	var items []entities.ServiceRequest
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		page, err := unmarshalServiceRequests(out.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

func (r *ServiceRequestDynamoRepository) TransitionStatus(ctx context.Context, id string, from []entities.ServiceRequestStatus, to entities.ServiceRequestStatus, now time.Time) (entities.ServiceRequest, error) {
	values := map[string]types.AttributeValue{
		":to":         str(string(to)),
		":updated_at": str(formatTime(now)),
	}
	placeholders := make([]string, 0, len(from))
	for i, s := range from {
		k := fmt.Sprintf(":from%d", i)
		values[k] = str(string(s))
		placeholders = append(placeholders, k)
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tables.ServiceRequests),
		Key:                       keyOf(id),
		ConditionExpression:       aws.String("attribute_exists(#id) AND #status IN (" + strings.Join(placeholders, ", ") + ")"),
		UpdateExpression:          aws.String("SET #status = :to, #updated_at = :updated_at"),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return entities.ServiceRequest{}, conditionFailed(err, interfaces.EntityServiceRequest)
	}
	var it serviceRequestItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.ServiceRequest{}, err
	}
	return fromServiceRequestItem(it), nil
}

// AcquireLock moves the caller's lead and the request lock fields in one
// transaction. The lead is listed first so a missing or declined lead is
// reported before a held lock.
func (r *ServiceRequestDynamoRepository) AcquireLock(ctx context.Context, cmd interfaces.AcquireLockCommand) (entities.ServiceRequest, error) {
	updatedAt := str(formatTime(cmd.Now))
	_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:           aws.String(r.tables.Leads),
				Key:                 keyOf(cmd.LeadID),
				ConditionExpression: aws.String("attribute_exists(#id) AND #pro_id = :pro AND #status IN (:new, :accepted)"),
				UpdateExpression:    aws.String("SET #status = :accepted, #updated_at = :updated_at"),
				ExpressionAttributeNames: map[string]string{
					"#id":         "id",
					"#pro_id":     "pro_id",
					"#status":     "status",
					"#updated_at": "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":pro":        str(cmd.ProID),
					":new":        str(string(entities.LeadStatusNew)),
					":accepted":   str(string(entities.LeadStatusAccepted)),
					":updated_at": updatedAt,
				},
			}},
			{Update: &types.Update{
				TableName: aws.String(r.tables.ServiceRequests),
				Key:       keyOf(cmd.RequestID),
				ConditionExpression: aws.String("attribute_exists(#id) AND #status IN (:open, :dispatched, :accepted) " +
					"AND attribute_not_exists(#pending_quote_id) " +
					"AND (attribute_not_exists(#accepted_pro_id) OR #accept_expires_at <= :now)"),
				UpdateExpression: aws.String("SET #accepted_pro_id = :pro, #accept_expires_at = :expires_at, #status = :accepted, #updated_at = :updated_at"),
				ExpressionAttributeNames: map[string]string{
					"#id":                "id",
					"#status":            "status",
					"#pending_quote_id":  "pending_quote_id",
					"#accepted_pro_id":   "accepted_pro_id",
					"#accept_expires_at": "accept_expires_at",
					"#updated_at":        "updated_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":open":       str(string(entities.ServiceRequestStatusOpen)),
					":dispatched": str(string(entities.ServiceRequestStatusDispatched)),
					":accepted":   str(string(entities.ServiceRequestStatusAccepted)),
					":now":        num(millis(cmd.Now)),
					":pro":        str(cmd.ProID),
					":expires_at": num(millis(cmd.ExpiresAt)),
					":updated_at": updatedAt,
				},
			}},
		},
	})
	if err != nil {
		return entities.ServiceRequest{}, txConditionFailed(err, interfaces.EntityLead, interfaces.EntityServiceRequest)
	}
	return r.GetByID(ctx, cmd.RequestID)
}

func (r *ServiceRequestDynamoRepository) ListExpiredLocks(ctx context.Context, now time.Time, limit int) ([]entities.ServiceRequest, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.ServiceRequests),
		IndexName:              aws.String(serviceRequestsLockIndex),
		KeyConditionExpression: aws.String("#status = :accepted AND #accept_expires_at <= :now"),
		FilterExpression:       aws.String("attribute_not_exists(#pending_quote_id)"),
		ExpressionAttributeNames: map[string]string{
			"#status":            "status",
			"#accept_expires_at": "accept_expires_at",
			"#pending_quote_id":  "pending_quote_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":accepted": str(string(entities.ServiceRequestStatusAccepted)),
			":now":      num(millis(now)),
		},
	})
	raw, err := collectItems(ctx, p, limit)
	if err != nil {
		return nil, err
	}
	return unmarshalServiceRequests(raw)
}

// ReleaseExpiredLock reports false when the lock was renewed, taken over or
// frozen by a quote since it was listed.
func (r *ServiceRequestDynamoRepository) ReleaseExpiredLock(ctx context.Context, id, proID string, now time.Time) (bool, error) {
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tables.ServiceRequests),
		Key:       keyOf(id),
		ConditionExpression: aws.String("#status = :accepted AND #accepted_pro_id = :pro " +
			"AND #accept_expires_at <= :now AND attribute_not_exists(#pending_quote_id)"),
		UpdateExpression: aws.String("SET #status = :dispatched, #updated_at = :updated_at REMOVE #accepted_pro_id, #accept_expires_at"),
		ExpressionAttributeNames: map[string]string{
			"#status":            "status",
			"#accepted_pro_id":   "accepted_pro_id",
			"#accept_expires_at": "accept_expires_at",
			"#pending_quote_id":  "pending_quote_id",
			"#updated_at":        "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":accepted":   str(string(entities.ServiceRequestStatusAccepted)),
			":dispatched": str(string(entities.ServiceRequestStatusDispatched)),
			":pro":        str(proID),
			":now":        num(millis(now)),
			":updated_at": str(formatTime(now)),
		},
	})
	if err != nil {
		if interfaces.FailedEntity(conditionFailed(err, interfaces.EntityServiceRequest)) != "" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *ServiceRequestDynamoRepository) DeleteCompleted(ctx context.Context, id, customerID string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tables.ServiceRequests),
		Key:                 keyOf(id),
		ConditionExpression: aws.String("attribute_exists(#id) AND #customer_id = :cid AND #status = :completed"),
		ExpressionAttributeNames: map[string]string{
			"#id":          "id",
			"#customer_id": "customer_id",
			"#status":      "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid":       str(customerID),
			":completed": str(string(entities.ServiceRequestStatusCompleted)),
		},
	})
	if err != nil {
		return conditionFailed(err, interfaces.EntityServiceRequest)
	}
	return nil
}

func unmarshalServiceRequests(raw []map[string]types.AttributeValue) ([]entities.ServiceRequest, error) {
	items := make([]entities.ServiceRequest, 0, len(raw))
	for _, av := range raw {
		var it serviceRequestItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		items = append(items, fromServiceRequestItem(it))
	}
	return items, nil
}

func toServiceRequestItem(sr entities.ServiceRequest) serviceRequestItem {
	return serviceRequestItem{
		ID:              sr.ID,
		CustomerID:      sr.CustomerID,
		Vehicle:         sr.Vehicle,
		CategoryID:      sr.CategoryID,
		Address:         sr.Address,
		Zip:             sr.Zip,
		Status:          string(sr.Status),
		AcceptedProID:   sr.AcceptedProID,
		AcceptExpiresAt: millisPtr(sr.AcceptExpiresAt),
		PendingQuoteID:  sr.PendingQuoteID,
		CreatedAt:       formatTime(sr.CreatedAt),
		UpdatedAt:       formatTime(sr.UpdatedAt),
	}
}

func fromServiceRequestItem(it serviceRequestItem) entities.ServiceRequest {
	return entities.ServiceRequest{
		ID:              it.ID,
		CustomerID:      it.CustomerID,
		Vehicle:         it.Vehicle,
		CategoryID:      it.CategoryID,
		Address:         it.Address,
		Zip:             it.Zip,
		Status:          entities.ServiceRequestStatus(it.Status),
		AcceptedProID:   it.AcceptedProID,
		AcceptExpiresAt: fromMillis(it.AcceptExpiresAt),
		PendingQuoteID:  it.PendingQuoteID,
		CreatedAt:       parseTime(it.CreatedAt),
		UpdatedAt:       parseTime(it.UpdatedAt),
	}
}
