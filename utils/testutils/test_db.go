package testutils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyAttribute is one key of a test table.
type KeyAttribute struct {
	Name string
	Type types.ScalarAttributeType
}

// CreateTestTable creates a table whose first key is the hash key and whose
// optional second key is the range key. The table is deleted when the test
// ends.
func CreateTestTable(t testing.TB, db *dynamodb.Client, tableName string, keys ...KeyAttribute) {
	t.Helper()

	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
	}

	for i, k := range keys {
		keyType := types.KeyTypeHash
		if i > 0 {
			keyType = types.KeyTypeRange
		}
		input.AttributeDefinitions = append(input.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(k.Name),
			AttributeType: k.Type,
		})
		input.KeySchema = append(input.KeySchema, types.KeySchemaElement{
			AttributeName: aws.String(k.Name),
			KeyType:       keyType,
		})
	}

	ctx := context.Background()

	_, err := db.CreateTable(ctx, input)
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			t.Fatalf("unable to create table %s: %v", tableName, err)
		}
		t.Logf("table %s already exists", tableName)
	}

	waiter := dynamodb.NewTableExistsWaiter(db)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}, time.Minute); err != nil {
		t.Fatalf("table %s never became ready: %v", tableName, err)
	}

	t.Cleanup(func() {
		DestroyTestTable(t, db, tableName)
	})
}

// DestroyTestTable deletes a table created by CreateTestTable.
func DestroyTestTable(t testing.TB, db *dynamodb.Client, tableName string) {
	t.Helper()

	if _, err := db.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	}); err != nil {
		t.Errorf("unable to delete table %s: %v", tableName, err)
	}
}
