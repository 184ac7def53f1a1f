package dynamostore

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory stand-in for the DynamoDB client. Query returns at
// most pageSize items per page, ordered by range key.
type fakeAPI struct {
	mu       sync.Mutex
	pageSize int
	tables   map[string]map[string]map[string]types.AttributeValue
	queries  int
	err      error
}

func newFakeAPI(pageSize int) *fakeAPI {
	return &fakeAPI{
		pageSize: pageSize,
		tables:   map[string]map[string]map[string]types.AttributeValue{},
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func itemKey(item map[string]types.AttributeValue) string {
	if v, ok := item[PublisherIDAttr].(*types.AttributeValueMemberN); ok {
		return v.Value
	}
	return stringAttr(item, StreamIDAttr) + "/" + stringAttr(item, MessageIDAttr)
}

func (f *fakeAPI) put(table string, item map[string]types.AttributeValue) {
	if f.tables[table] == nil {
		f.tables[table] = map[string]map[string]types.AttributeValue{}
	}
	f.tables[table][itemKey(item)] = item
}

func (f *fakeAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.put(*params.TableName, params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{
		Item: f.tables[*params.TableName][itemKey(params.Key)],
	}, nil
}

func (f *fakeAPI) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries++
	if f.err != nil {
		return nil, f.err
	}

	stream := params.ExpressionAttributeValues[":key"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range f.tables[*params.TableName] {
		if stringAttr(item, StreamIDAttr) == stream {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return stringAttr(items[i], MessageIDAttr) < stringAttr(items[j], MessageIDAttr)
	})

	if start := params.ExclusiveStartKey; start != nil {
		after := stringAttr(start, MessageIDAttr)
		i := sort.Search(len(items), func(i int) bool {
			return stringAttr(items[i], MessageIDAttr) > after
		})
		items = items[i:]
	}

	out := &dynamodb.QueryOutput{}
	if len(items) > f.pageSize {
		items = items[:f.pageSize]
		last := items[len(items)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			StreamIDAttr:  last[StreamIDAttr],
			MessageIDAttr: last[MessageIDAttr],
		}
	}
	out.Items = items
	out.Count = int32(len(items))

	return out, nil
}
