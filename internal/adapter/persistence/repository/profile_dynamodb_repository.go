package repository

import (
	"context"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type profileItem struct {
	ID          string   `dynamodbav:"id"`
	Role        string   `dynamodbav:"role"`
	Name        string   `dynamodbav:"name"`
	Email       string   `dynamodbav:"email"`
	CategoryIDs []string `dynamodbav:"category_ids,stringset,omitempty"`
	ZipCodes    []string `dynamodbav:"zip_codes,stringset,omitempty"`
	Active      bool     `dynamodbav:"active"`
}

// ProfileDynamoRepository persists Profile entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Eligibility is answered with a filtered scan; category and zip sets are
// stored as string sets so contains() matches whole members.
type ProfileDynamoRepository struct {
	ddb    *dynamodb.Client
	tables Tables
}

var _ interfaces.IProfileRepository = (*ProfileDynamoRepository)(nil)

func NewProfileDynamoRepository(ddb *dynamodb.Client, tables Tables) *ProfileDynamoRepository {
	return &ProfileDynamoRepository{ddb: ddb, tables: tables.withDefaults()}
}

func (r *ProfileDynamoRepository) Upsert(ctx context.Context, p entities.Profile) (entities.Profile, error) {
	av, err := attributevalue.MarshalMap(toProfileItem(p))
	if err != nil {
		return entities.Profile{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tables.Profiles),
		Item:      av,
	})
	if err != nil {
		return entities.Profile{}, err
	}
	return p, nil
}

func (r *ProfileDynamoRepository) GetByID(ctx context.Context, id string) (entities.Profile, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tables.Profiles),
		Key:            keyOf(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Profile{}, err
	}
	if len(out.Item) == 0 {
		return entities.Profile{}, nil
	}
	var it profileItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Profile{}, err
	}
	return fromProfileItem(it), nil
}

func (r *ProfileDynamoRepository) ListEligiblePros(ctx context.Context, categoryID, zip string) ([]entities.Profile, error) {
	p := dynamodb.NewScanPaginator(r.ddb, &dynamodb.ScanInput{
		TableName:        aws.String(r.tables.Profiles),
		FilterExpression: aws.String("#role = :pro AND #active = :true AND contains(#category_ids, :cat) AND contains(#zip_codes, :zip)"),
		ExpressionAttributeNames: map[string]string{
			"#role":         "role",
			"#active":       "active",
			"#category_ids": "category_ids",
			"#zip_codes":    "zip_codes",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pro":  str(string(entities.RolePro)),
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":cat":  str(categoryID),
			":zip":  str(zip),
		},
	})
	var items []entities.Profile
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, av := range out.Items {
			var it profileItem
			if err := attributevalue.UnmarshalMap(av, &it); err != nil {
				return nil, err
			}
			items = append(items, fromProfileItem(it))
		}
	}
	return items, nil
}

func toProfileItem(p entities.Profile) profileItem {
	return profileItem{
		ID:          p.ID,
		Role:        string(p.Role),
		Name:        p.Name,
		Email:       p.Email,
		CategoryIDs: p.CategoryIDs,
		ZipCodes:    p.ZipCodes,
		Active:      p.Active,
	}
}

func fromProfileItem(it profileItem) entities.Profile {
	return entities.Profile{
		ID:          it.ID,
		Role:        entities.Role(it.Role),
		Name:        it.Name,
		Email:       it.Email,
		CategoryIDs: it.CategoryIDs,
		ZipCodes:    it.ZipCodes,
		Active:      it.Active,
	}
}
