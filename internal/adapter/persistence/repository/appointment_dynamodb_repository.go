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
	appointmentsProIDIndex      = "pro_id-index"
	appointmentsCustomerIDIndex = "customer_id-index"
)

type appointmentItem struct {
	ID                    string `dynamodbav:"id"`
	RequestID             string `dynamodbav:"request_id"`
	QuoteID               string `dynamodbav:"quote_id"`
	CustomerID            string `dynamodbav:"customer_id"`
	ProID                 string `dynamodbav:"pro_id"`
	StartsAt              string `dynamodbav:"starts_at"`
	Status                string `dynamodbav:"status"`
	ConfirmationExpiresAt int64  `dynamodbav:"confirmation_expires_at"`
	CreatedAt             string `dynamodbav:"created_at"`
	UpdatedAt             string `dynamodbav:"updated_at"`
}

// AppointmentDynamoRepository persists Appointment entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string, equal to the quote id)
//   - GSI: pro_id-index (PK: pro_id)
//   - GSI: customer_id-index (PK: customer_id)
type AppointmentDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.IAppointmentRepository = (*AppointmentDynamoRepository)(nil)

func NewAppointmentDynamoRepository(ddb *dynamodb.Client, tables Tables) *AppointmentDynamoRepository {
	return &AppointmentDynamoRepository{ddb: ddb, tables: tables.withDefaults()}
}

func (r *AppointmentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Appointment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Appointments),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Appointment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Appointment{}, nil
	}
	var it appointmentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Appointment{}, err
	}
	return fromAppointmentItem(it), nil
}

func (r *AppointmentDynamoRepository) ListByPro(ctx context.Context, proID string) ([]entities.Appointment, error) {
	return r.query(ctx, appointmentsProIDIndex, "pro_id", proID)
}

func (r *AppointmentDynamoRepository) ListByCustomer(ctx context.Context, customerID string) ([]entities.Appointment, error) {
	return r.query(ctx, appointmentsCustomerIDIndex, "customer_id", customerID)
}

func (r *AppointmentDynamoRepository) Transition(ctx context.Context, id string, from, to entities.AppointmentStatus, now time.Time) (entities.Appointment, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tables.Appointments),
		Key:                 keyOf(id),
		ConditionExpression: aws.String("attribute_exists(#id) AND #status = :from"),
		UpdateExpression:    aws.String("SET #status = :to, #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from":       str(string(from)),
			":to":         str(string(to)),
			":updated_at": str(formatTime(now)),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return entities.Appointment{}, conditionFailed(err, interfaces.EntityAppointment)
	}
	var it appointmentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Appointment{}, err
	}
	return fromAppointmentItem(it), nil
}

// Close requires the request to still be scheduled; both items move in one
// transaction.
func (r *AppointmentDynamoRepository) Close(ctx context.Context, a entities.Appointment, from, to entities.AppointmentStatus, requestTo entities.ServiceRequestStatus, now time.Time) (entities.Appointment, error) {
	updatedAt := str(formatTime(now))
	_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			statusMove(r.tables.Appointments, a.ID, string(from), string(to), updatedAt),
			statusMove(r.tables.ServiceRequests, a.RequestID,
				string(entities.ServiceRequestStatusScheduled), string(requestTo), updatedAt),
		},
	})
	if err != nil {
		return entities.Appointment{}, txConditionFailed(err, interfaces.EntityAppointment, interfaces.EntityServiceRequest)
	}
	return r.GetByID(ctx, a.ID)
}

func (r *AppointmentDynamoRepository) query(ctx context.Context, index, attr, value string) ([]entities.Appointment, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tables.Appointments),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": str(value)},
	})
	var items []entities.Appointment
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, av := range out.Items {
			var it appointmentItem
			if err := attributevalue.UnmarshalMap(av, &it); err != nil {
				return nil, err
			}
			items = append(items, fromAppointmentItem(it))
		}
	}
	return items, nil
}

func toAppointmentItem(a entities.Appointment) appointmentItem {
	return appointmentItem{
		ID:                    a.ID,
		RequestID:             a.RequestID,
		QuoteID:               a.QuoteID,
		CustomerID:            a.CustomerID,
		ProID:                 a.ProID,
		StartsAt:              formatTime(a.StartsAt),
		Status:                string(a.Status),
		ConfirmationExpiresAt: millis(a.ConfirmationExpiresAt),
		CreatedAt:             formatTime(a.CreatedAt),
		UpdatedAt:             formatTime(a.UpdatedAt),
	}
}

func fromAppointmentItem(it appointmentItem) entities.Appointment {
	return entities.Appointment{
		ID:                    it.ID,
		RequestID:             it.RequestID,
		QuoteID:               it.QuoteID,
		CustomerID:            it.CustomerID,
		ProID:                 it.ProID,
		StartsAt:              parseTime(it.StartsAt),
		Status:                entities.AppointmentStatus(it.Status),
		ConfirmationExpiresAt: time.UnixMilli(it.ConfirmationExpiresAt).UTC(),
		CreatedAt:             parseTime(it.CreatedAt),
		UpdatedAt:             parseTime(it.UpdatedAt),
	}
}
