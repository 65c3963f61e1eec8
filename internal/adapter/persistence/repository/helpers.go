package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"automarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Tables names the DynamoDB tables. Repositories that write across entities
// in one transaction need more than their own table.
type Tables struct {
	ServiceRequests string
	Leads           string
	Quotes          string
	Appointments    string
	ReferralFees    string
	Profiles        string
}

const (
	defaultServiceRequestsTableName = "service_requests"
	defaultLeadsTableName           = "leads"
	defaultQuotesTableName          = "quotes"
	defaultAppointmentsTableName    = "appointments"
	defaultReferralFeesTableName    = "referral_fees"
	defaultProfilesTableName        = "profiles"
)

func (t Tables) withDefaults() Tables {
	t.ServiceRequests = orDefault(t.ServiceRequests, defaultServiceRequestsTableName)
	t.Leads = orDefault(t.Leads, defaultLeadsTableName)
	t.Quotes = orDefault(t.Quotes, defaultQuotesTableName)
	t.Appointments = orDefault(t.Appointments, defaultAppointmentsTableName)
	t.ReferralFees = orDefault(t.ReferralFees, defaultReferralFeesTableName)
	t.Profiles = orDefault(t.Profiles, defaultProfilesTableName)
	return t
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

const (
	conditionalCheckFailed = "ConditionalCheckFailed"
	transactionConflict    = "TransactionConflict"
)

// conditionFailed translates a rejected single-item write. A write that
// collided with an in-flight transaction on the same item is reported the
// same way; callers re-read and explain.
func conditionFailed(err error, entity string) error {
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return interfaces.ConditionFailed(entity)
	}
	var tce *types.TransactionConflictException
	if errors.As(err, &tce) {
		return interfaces.ConditionFailed(entity)
	}
	return err
}

// txConditionFailed translates a cancelled transaction. entities lists the
// entity of each TransactItem in order. A failed condition wins over a
// conflict with a concurrent transaction; the first of either is reported.
func txConditionFailed(err error, entities ...string) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return err
	}
	conflict := -1
	for i, reason := range tce.CancellationReasons {
		if i >= len(entities) {
			break
		}
		switch aws.ToString(reason.Code) {
		case conditionalCheckFailed:
			return interfaces.ConditionFailed(entities[i])
		case transactionConflict:
			if conflict < 0 {
				conflict = i
			}
		}
	}
	if conflict >= 0 {
		return interfaces.ConditionFailed(entities[conflict])
	}
	return err
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func str(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func num(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

// millis is the representation of every timestamp a condition compares.
func millis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := millis(*t)
	return &v
}

func fromMillis(v *int64) *time.Time {
	if v == nil {
		return nil
	}
	t := time.UnixMilli(*v).UTC()
	return &t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)
	return &t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func mergeNames(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

type queryPager interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// collectItems walks pages until limit items were gathered. A filtered query
// can return empty pages that still carry a LastEvaluatedKey, so a single
// page says nothing about what is left. limit <= 0 reads everything.
func collectItems(ctx context.Context, p queryPager, limit int) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
	}
	return items, nil
}
