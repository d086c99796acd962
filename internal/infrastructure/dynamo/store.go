package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/repository"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// Store keeps users and notes as documents in one DynamoDB table.
type Store struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewStore(client API, tableName string) *Store {
	return &Store{client: client, tableName: tableName, now: time.Now}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Notes() *NoteRepository { return &NoteRepository{s: s} }

// Ping reports whether the table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err != nil {
		return fmt.Errorf("describe table: %w", err)
	}
	return nil
}

// EnsureTable creates the table and its indexes when missing. Meant for
// local emulators; production tables are provisioned outside the app.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table: %w", err)
	}

	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(s.tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("UserId"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("OwnerId"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("Created"), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(userIDIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("UserId"), KeyType: types.KeyTypeHash},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
			{
				IndexName: aws.String(ownerNotesIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("OwnerId"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("Created"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (s *Store) getItem(ctx context.Context, pk, sk string, out any) error {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(pk, sk),
	})
	if err != nil {
		return fmt.Errorf("GetItem failed: %w", err)
	}
	if resp.Item == nil {
		return errItemNotFound
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return nil
}

// putNew inserts item only if no item with the same key exists.
func (s *Store) putNew(ctx context.Context, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return errConditionFailed
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// queryIndex pages through every item in indexName whose partition key
// attribute equals value.
func (s *Store) queryIndex(ctx context.Context, indexName, attr, value string, newestFirst bool, filter *filterExpr) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: value},
		},
		ScanIndexForward: aws.Bool(!newestFirst),
	}
	if filter != nil {
		input.FilterExpression = aws.String(filter.expr)
		for k, v := range filter.names {
			input.ExpressionAttributeNames[k] = v
		}
		for k, v := range filter.values {
			input.ExpressionAttributeValues[k] = v
		}
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s failed: %w", indexName, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

type filterExpr struct {
	expr   string
	names  map[string]string
	values map[string]types.AttributeValue
}

var (
	errItemNotFound    = errors.New("item does not exist")
	errConditionFailed = errors.New("condition not met")
)

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func isConditionFailed(err error) bool {
	var cce *types.ConditionalCheckFailedException
	return errors.As(err, &cce)
}

type UserRepository struct{ s *Store }

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var du dynamoUser
	if err := r.s.getItem(ctx, userPK(email), userSK, &du); err != nil {
		if errors.Is(err, errItemNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userFromDynamo(du), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	items, err := r.s.queryIndex(ctx, userIDIndex, "UserId", id, false, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrUserNotFound
	}
	var du dynamoUser
	if err := attributevalue.UnmarshalMap(items[0], &du); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return userFromDynamo(du), nil
}

// Save relies on the conditional put on USER#<email> for uniqueness, so two
// concurrent registrations cannot both succeed.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := r.s.now().UTC()
	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := r.s.putNew(ctx, userToDynamo(&u)); err != nil {
		if errors.Is(err, errConditionFailed) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, err
	}
	return &u, nil
}

type NoteRepository struct{ s *Store }

var _ repository.NoteRepository = (*NoteRepository)(nil)

func (r *NoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	var dn dynamoNote
	if err := r.s.getItem(ctx, notePK(id), noteSK, &dn); err != nil {
		if errors.Is(err, errItemNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return noteFromDynamo(dn), nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, input repository.ListNotesInput) ([]*domain.Note, error) {
	var filter *filterExpr
	if input.Category != "" {
		filter = &filterExpr{
			expr:   "#cat = :cat",
			names:  map[string]string{"#cat": "Category"},
			values: map[string]types.AttributeValue{":cat": &types.AttributeValueMemberS{Value: string(input.Category)}},
		}
	}

	items, err := r.s.queryIndex(ctx, ownerNotesIndex, "OwnerId", input.OwnerID, true, filter)
	if err != nil {
		return nil, err
	}

	var dns []dynamoNote
	if err := attributevalue.UnmarshalListOfMaps(items, &dns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
	}

	// DynamoDB's contains() is case-sensitive, so text search runs here.
	q := strings.ToLower(input.Query)
	notes := make([]*domain.Note, 0, len(dns))
	for _, dn := range dns {
		if dn.OwnerID != input.OwnerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(dn.Title), q) && !strings.Contains(strings.ToLower(dn.Content), q) {
			continue
		}
		notes = append(notes, noteFromDynamo(dn))
	}
	return notes, nil
}

func (r *NoteRepository) Save(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	now := r.s.now().UTC()
	if note.ID == "" {
		n := *note
		n.ID = uuid.NewString()
		n.CreatedAt = now
		n.UpdatedAt = now
		if err := r.s.putNew(ctx, noteToDynamo(&n)); err != nil {
			return nil, err
		}
		return &n, nil
	}

	// OwnerId and Created are never part of the update expression.
	resp, err := r.s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.s.tableName),
		Key:                 itemKey(notePK(note.ID), noteSK),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		UpdateExpression:    aws.String("SET Title = :t, Content = :c, Category = :cat, Updated = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberS{Value: note.Title},
			":c":   &types.AttributeValueMemberS{Value: note.Content},
			":cat": &types.AttributeValueMemberS{Value: string(note.Category)},
			":u":   &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixNano(), 10)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("UpdateItem failed: %w", err)
	}

	var dn dynamoNote
	if err := attributevalue.UnmarshalMap(resp.Attributes, &dn); err != nil {
		return nil, fmt.Errorf("failed to unmarshal note: %w", err)
	}
	return noteFromDynamo(dn), nil
}

func (r *NoteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.s.tableName),
		Key:                 itemKey(notePK(id), noteSK),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.ErrNoteNotFound
		}
		return fmt.Errorf("DeleteItem failed: %w", err)
	}
	return nil
}
