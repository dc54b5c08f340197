package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/moodgarden/verify-api/internal/verification"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	attrRecipient = "recipient"
	attrCode      = "code"
	attrExpiresAt = "expires_at"

	// maxAttempts bounds the read-decide-delete retries when a record changes underneath us.
	maxAttempts = 5
)

// API is the subset of *dynamodb.Client the verification store needs.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// verificationItem is the stored shape. PK: recipient.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type verificationItem struct {
	Recipient string `dynamodbav:"recipient"`
	Code      string `dynamodbav:"code"`
	ExpiresAt int64  `dynamodbav:"expires_at"` // TTL (Unix seconds)
}

func (it verificationItem) record() domain.VerificationRecord {
	return domain.VerificationRecord{
		Recipient: it.Recipient,
		Code:      it.Code,
		ExpiresAt: time.Unix(it.ExpiresAt, 0).UTC(),
	}
}

// VerificationRepo stores pending codes in a DynamoDB table with TTL enabled on expires_at.
// DynamoDB removes expired items on its own schedule; lazy expiry in Validate and Sweep
// cover the window before it does.
type VerificationRepo struct {
	client    API
	tableName string
	opts      verification.Options
	logger    *zap.Logger
}

func NewVerificationRepo(client API, tableName string, opts verification.Options, logger *zap.Logger) *VerificationRepo {
	return &VerificationRepo{
		client:    client,
		tableName: tableName,
		opts:      opts.WithDefaults(),
		logger:    logger,
	}
}

func (r *VerificationRepo) Issue(ctx context.Context, recipient string) (string, error) {
	rec := r.opts.NewRecord(recipient)
	item, err := attributevalue.MarshalMap(verificationItem{
		Recipient: rec.Recipient,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("put verification: %w", err)
	}
	return rec.Code, nil
}

func (r *VerificationRepo) Validate(ctx context.Context, recipient, code string) (domain.Outcome, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		it, err := r.get(ctx, recipient)
		if err != nil {
			return domain.OutcomeNotFound, err
		}
		var rec *domain.VerificationRecord
		if it != nil {
			v := it.record()
			rec = &v
		}
		outcome, remove := verification.Check(rec, code, r.opts.Now())
		if !remove {
			return outcome, nil
		}
		deleted, err := r.deleteIfUnchanged(ctx, *it)
		if err != nil {
			return domain.OutcomeNotFound, err
		}
		if deleted {
			return outcome, nil
		}
	}
	return domain.OutcomeNotFound, fmt.Errorf("validate verification: record kept changing: %w", domain.ErrConflict)
}

func (r *VerificationRepo) Sweep(ctx context.Context) (int, error) {
	now := r.opts.Now()
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#exp <= :now"),
		ExpressionAttributeNames: map[string]string{"#exp": attrExpiresAt},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": numAttr(now.Unix()),
		},
	})

	removed := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return removed, fmt.Errorf("scan verifications: %w", err)
		}
		for _, raw := range page.Items {
			it, err := r.decode(raw, zapcore.ErrorLevel)
			if err != nil {
				continue
			}
			if !verification.Expired(it.record(), now) {
				continue
			}
			deleted, err := r.deleteIfUnchanged(ctx, *it)
			if err != nil {
				return removed, err
			}
			if deleted {
				removed++
			}
		}
	}
	return removed, nil
}

// get returns nil when the recipient has no item.
func (r *VerificationRepo) get(ctx context.Context, recipient string) (*verificationItem, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrRecipient, recipient),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return r.decode(out.Item, zapcore.DPanicLevel)
}

// decode logs malformed items at lvl.
func (r *VerificationRepo) decode(raw map[string]types.AttributeValue, lvl zapcore.Level) (*verificationItem, error) {
	var it verificationItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return nil, r.corrupt(lvl, it.Recipient, err.Error())
	}
	if it.Recipient == "" || it.ExpiresAt <= 0 || !verification.ValidCode(it.Code) {
		return nil, r.corrupt(lvl, it.Recipient, "missing or malformed attributes")
	}
	return &it, nil
}

func (r *VerificationRepo) corrupt(lvl zapcore.Level, recipient, reason string) error {
	r.logger.Log(lvl, "corrupt verification record",
		zap.String("table", r.tableName),
		zap.String("recipient", recipient),
		zap.String("reason", reason),
	)
	return fmt.Errorf("%s: %s: %w", recipient, reason, domain.ErrCorruptRecord)
}

// deleteIfUnchanged reports false when the item no longer matches what was read.
func (r *VerificationRepo) deleteIfUnchanged(ctx context.Context, it verificationItem) (bool, error) {
	expr, names, values := sameRecordCondition(it.Code, it.ExpiresAt)
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrRecipient, it.Recipient),
		ConditionExpression:       aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("delete verification: %w", err)
	}
	return true, nil
}
