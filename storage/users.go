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

type UserStorage interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	// ResetAllFlags clears both has-voted flags on every user. Any failure is
	// returned so the caller can surface a partially applied reset instead of
	// silently swallowing it.
	ResetAllFlags(ctx context.Context) error
}

type DynamoUserStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoUserStorage) Get(ctx context.Context, id string) (*User, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("USER: GetItem for %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}

	var user User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
		return nil, err
	}
	return &user, nil
}

func (s *DynamoUserStorage) GetByUsername(ctx context.Context, username string) (*User, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("Username = :username"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
	})
	if err != nil {
		logging.Log.Errorf("USER: scan by username failed: %v", err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var user User
	if err := attributevalue.UnmarshalMap(out.Items[0], &user); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
		return nil, err
	}
	return &user, nil
}

func (s *DynamoUserStorage) GetAll(ctx context.Context) ([]*User, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("USER: scan failed: %v", err)
		return nil, err
	}

	var users []*User
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user list: %v", err)
		return nil, err
	}
	return users, nil
}

func (s *DynamoUserStorage) Create(ctx context.Context, user *User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal user: %v", err)
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
			logging.Log.Warnf("USER: user %s already exists", user.ID)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("USER: failed to create user: %v", err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) Update(ctx context.Context, user *User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal updated user: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("USER: failed to update user: %v", err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal delete key for %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("USER: failed to delete user %s: %v", id, err)
		return err
	}
	logging.Log.Infof("USER: deleted user %s", id)
	return nil
}

func (s *DynamoUserStorage) ResetAllFlags(ctx context.Context) error {
	users, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, u := range users {
		_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: &s.TableName,
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: u.ID},
			},
			UpdateExpression: aws.String("SET HasVotedOsis = :f, HasVotedMpk = :f"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":f": &types.AttributeValueMemberBOOL{Value: false},
			},
		})
		if err != nil {
			logging.Log.Errorf("USER: failed to reset flags for %s: %v", u.ID, err)
			return err
		}
	}
	return nil
}
