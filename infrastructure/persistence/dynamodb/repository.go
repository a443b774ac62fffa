// Package dynamodb stores one item per evidence map in a DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/persistence"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

const (
	entityType = "EVIDENCE_MAP"
	sortKey    = "EVIDENCE_MAP"
)

// Client is the part of the DynamoDB API the repository uses.
// *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Repository implements ports.EvidenceMapRepository on DynamoDB
type Repository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewRepository creates a new Repository
func NewRepository(client Client, tableName string, logger *zap.Logger) *Repository {
	return &Repository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// evidenceMapItem represents the DynamoDB item structure for a map
type evidenceMapItem struct {
	PK         string                `dynamodbav:"PK"`
	SK         string                `dynamodbav:"SK"`
	EntityType string                `dynamodbav:"EntityType"`
	CaseID     string                `dynamodbav:"CaseID"`
	Nodes      []entities.NodeRecord `dynamodbav:"Nodes"`
	Edges      []entities.EdgeRecord `dynamodbav:"Edges"`
	Viewport   valueobjects.Viewport `dynamodbav:"Viewport"`
	NodeCount  int                   `dynamodbav:"NodeCount"`
	EdgeCount  int                   `dynamodbav:"EdgeCount"`
	UpdatedAt  string                `dynamodbav:"UpdatedAt"`
	Version    int                   `dynamodbav:"Version"`
}

func partitionKey(caseID valueobjects.CaseID) string {
	return fmt.Sprintf("CASE#%s", caseID.String())
}

func itemKey(caseID valueobjects.CaseID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(caseID)},
		"SK": &types.AttributeValueMemberS{Value: sortKey},
	}
}

// Load retrieves the map of a case
func (r *Repository) Load(ctx context.Context, caseID valueobjects.CaseID) (*aggregates.EvidenceMap, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(caseID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.Error("Failed to get evidence map from DynamoDB",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("get evidence map", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrEvidenceMapNotFound, "case %s", caseID)
	}

	var item evidenceMapItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evidence map: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		r.logger.Error("Stored evidence map has an invalid UpdatedAt",
			zap.String("caseID", caseID.String()),
			zap.String("updatedAt", item.UpdatedAt),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse evidence map timestamp: %w", err)
	}
	rec := persistence.MapRecord{
		CaseID:    item.CaseID,
		Nodes:     item.Nodes,
		Edges:     item.Edges,
		Viewport:  item.Viewport,
		UpdatedAt: updatedAt,
		Version:   item.Version,
	}
	return rec.ToAggregate()
}

// Save replaces the stored map of a case. The write only refuses to replace
// an item of another entity type stored under the same key.
func (r *Repository) Save(ctx context.Context, m *aggregates.EvidenceMap) error {
	rec := persistence.ToRecord(m)
	item := evidenceMapItem{
		PK:         partitionKey(m.CaseID()),
		SK:         sortKey,
		EntityType: entityType,
		CaseID:     rec.CaseID,
		Nodes:      rec.Nodes,
		Edges:      rec.Edges,
		Viewport:   rec.Viewport,
		NodeCount:  len(rec.Nodes),
		EdgeCount:  len(rec.Edges),
		UpdatedAt:  rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Version:    rec.Version,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence map: %w", err)
	}

	condition := expression.Or(
		expression.Name("PK").AttributeNotExists(),
		expression.Name("EntityType").Equal(expression.Value(entityType)),
	)
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError(fmt.Sprintf("key of case %s holds another item", rec.CaseID)).WithCause(err)
		}
		r.logger.Error("Failed to save evidence map to DynamoDB",
			zap.String("caseID", rec.CaseID),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("put evidence map", err)
	}

	r.logger.Debug("Saved evidence map to DynamoDB",
		zap.String("caseID", rec.CaseID),
		zap.Int("nodeCount", item.NodeCount),
		zap.Int("edgeCount", item.EdgeCount),
		zap.Int("version", item.Version))
	return nil
}

// Ping checks that the table exists and is reachable
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("describe table", err)
	}
	return nil
}
