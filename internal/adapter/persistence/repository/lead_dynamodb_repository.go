package repository

import (
	"context"
	"errors"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	leadsProIDIndex     = "pro_id-index"
	leadsRequestIDIndex = "request_id-index"
)

type leadItem struct {
	ID        string `dynamodbav:"id"`
	RequestID string `dynamodbav:"request_id"`
	ProID     string `dynamodbav:"pro_id"`
	Status    string `dynamodbav:"status"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// LeadDynamoRepository persists Lead entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: pro_id-index (PK: pro_id)
//   - GSI: request_id-index (PK: request_id)
//
// Lead ids are derived from (request, pro) so a repeated dispatch hits the
// attribute_not_exists guard instead of creating a duplicate offer.
type LeadDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.ILeadRepository = (*LeadDynamoRepository)(nil)

func NewLeadDynamoRepository(ddb *dynamodb.Client, tables Tables) *LeadDynamoRepository {
	return &LeadDynamoRepository{ddb: ddb, tables: tables.withDefaults()}
}

func (r *LeadDynamoRepository) CreateBatch(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error) {
	created := make([]entities.Lead, 0, len(leads))
	for _, l := range leads {
		av, err := attributevalue.MarshalMap(toLeadItem(l))
		if err != nil {
			return created, err
		}
		_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(r.tables.Leads),
			Item:                     av,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		})
		if err != nil {
			var cfe *types.ConditionalCheckFailedException
			if errors.As(err, &cfe) {
				continue
			}
			return created, err
		}
		created = append(created, l)
	}
	return created, nil
}

func (r *LeadDynamoRepository) GetByID(ctx context.Context, id string) (entities.Lead, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Leads),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Lead{}, err
	}
	if len(out.Item) == 0 {
		return entities.Lead{}, nil
	}
	var it leadItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Lead{}, err
	}
	return fromLeadItem(it), nil
}

func (r *LeadDynamoRepository) ListByPro(ctx context.Context, proID string) ([]entities.Lead, error) {
	return r.query(ctx, leadsProIDIndex, "pro_id", proID)
}

func (r *LeadDynamoRepository) ListByRequest(ctx context.Context, requestID string) ([]entities.Lead, error) {
	return r.query(ctx, leadsRequestIDIndex, "request_id", requestID)
}

func (r *LeadDynamoRepository) Decline(ctx context.Context, id, proID string, now time.Time) (entities.Lead, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tables.Leads),
		Key:                 keyOf(id),
		ConditionExpression: aws.String("attribute_exists(#id) AND #pro_id = :pro AND #status = :new"),
		UpdateExpression:    aws.String("SET #status = :declined, #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#pro_id":     "pro_id",
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pro":        str(proID),
			":new":        str(string(entities.LeadStatusNew)),
			":declined":   str(string(entities.LeadStatusDeclined)),
			":updated_at": str(formatTime(now)),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return entities.Lead{}, conditionFailed(err, interfaces.EntityLead)
	}
	var it leadItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Lead{}, err
	}
	return fromLeadItem(it), nil
}

func (r *LeadDynamoRepository) query(ctx context.Context, index, attr, value string) ([]entities.Lead, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tables.Leads),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": str(value)},
	})
	var items []entities.Lead
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, av := range out.Items {
			var it leadItem
			if err := attributevalue.UnmarshalMap(av, &it); err != nil {
				return nil, err
			}
			items = append(items, fromLeadItem(it))
		}
	}
	return items, nil
}

func toLeadItem(l entities.Lead) leadItem {
	return leadItem{
		ID:        l.ID,
		RequestID: l.RequestID,
		ProID:     l.ProID,
		Status:    string(l.Status),
		CreatedAt: formatTime(l.CreatedAt),
		UpdatedAt: formatTime(l.UpdatedAt),
	}
}

func fromLeadItem(it leadItem) entities.Lead {
	return entities.Lead{
		ID:        it.ID,
		RequestID: it.RequestID,
		ProID:     it.ProID,
		Status:    entities.LeadStatus(it.Status),
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}
}
