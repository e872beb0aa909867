package storage

import (
	"context"
	"errors"

	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type PeriodStorage interface {
	Get(ctx context.Context, id string) (*Period, error)
	GetAll(ctx context.Context) ([]*Period, error)
	GetActive(ctx context.Context) (*Period, error)
	Create(ctx context.Context, period *Period) error
	Update(ctx context.Context, period *Period) error
	// Activate marks one period active and every other period inactive in a
	// single transaction, so two periods are never active at the same time.
	Activate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type DynamoPeriodStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoPeriodStorage) Get(ctx context.Context, id string) (*Period, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("PERIOD: GetItem for %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}

	var period Period
	if err := attributevalue.UnmarshalMap(out.Item, &period); err != nil {
		logging.Log.Errorf("PERIOD: failed to unmarshal period: %v", err)
		return nil, err
	}
	return &period, nil
}

func (s *DynamoPeriodStorage) GetAll(ctx context.Context) ([]*Period, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("PERIOD: scan failed: %v", err)
		return nil, err
	}

	var periods []*Period
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &periods); err != nil {
		logging.Log.Errorf("PERIOD: failed to unmarshal period list: %v", err)
		return nil, err
	}
	return periods, nil
}

func (s *DynamoPeriodStorage) GetActive(ctx context.Context) (*Period, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("IsActive = :active"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		logging.Log.Errorf("PERIOD: scan for active period failed: %v", err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var period Period
	if err := attributevalue.UnmarshalMap(out.Items[0], &period); err != nil {
		logging.Log.Errorf("PERIOD: failed to unmarshal active period: %v", err)
		return nil, err
	}
	return &period, nil
}

func (s *DynamoPeriodStorage) Create(ctx context.Context, period *Period) error {
	item, err := attributevalue.MarshalMap(period)
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to marshal period: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("PERIOD: period %s already exists", period.ID)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("PERIOD: failed to create period: %v", err)
		return err
	}
	return nil
}

func (s *DynamoPeriodStorage) Update(ctx context.Context, period *Period) error {
	item, err := attributevalue.MarshalMap(period)
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to marshal updated period: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to update period: %v", err)
		return err
	}
	return nil
}

func (s *DynamoPeriodStorage) Activate(ctx context.Context, id string) error {
	periods, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	found := false
	items := make([]types.TransactWriteItem, 0, len(periods))
	for _, p := range periods {
		active := p.ID == id
		if active {
			found = true
		}
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: &s.TableName,
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: p.ID},
				},
				UpdateExpression: aws.String("SET IsActive = :active"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":active": &types.AttributeValueMemberBOOL{Value: active},
				},
			},
		})
	}
	if !found {
		return ErrNotFound
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to activate period %s: %v", id, err)
		return err
	}
	return nil
}

func (s *DynamoPeriodStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to marshal delete key for %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("PERIOD: failed to delete period %s: %v", id, err)
		return err
	}
	logging.Log.Infof("PERIOD: deleted period %s", id)
	return nil
}
