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

type CandidateStorage interface {
	Get(ctx context.Context, id string) (*Candidate, error)
	GetAll(ctx context.Context) ([]*Candidate, error)
	GetByPeriod(ctx context.Context, periodID string) ([]*Candidate, error)
	Create(ctx context.Context, candidate *Candidate) error
	Update(ctx context.Context, candidate *Candidate) error
	Delete(ctx context.Context, id string) error
}

type DynamoCandidateStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoCandidateStorage) Get(ctx context.Context, id string) (*Candidate, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: GetItem for %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}

	var candidate Candidate
	if err := attributevalue.UnmarshalMap(out.Item, &candidate); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to unmarshal candidate: %v", err)
		return nil, err
	}
	return &candidate, nil
}

func (s *DynamoCandidateStorage) GetAll(ctx context.Context) ([]*Candidate, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: scan failed: %v", err)
		return nil, err
	}

	var candidates []*Candidate
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &candidates); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to unmarshal candidate list: %v", err)
		return nil, err
	}
	return candidates, nil
}

func (s *DynamoCandidateStorage) GetByPeriod(ctx context.Context, periodID string) ([]*Candidate, error) {
	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("PeriodID = :periodId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":periodId": &types.AttributeValueMemberS{Value: periodID},
		},
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: scan by period %s failed: %v", periodID, err)
		return nil, err
	}

	var candidates []*Candidate
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &candidates); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to unmarshal candidate list: %v", err)
		return nil, err
	}
	return candidates, nil
}

func (s *DynamoCandidateStorage) Create(ctx context.Context, candidate *Candidate) error {
	item, err := attributevalue.MarshalMap(candidate)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal candidate: %v", err)
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
			logging.Log.Warnf("CANDIDATE: candidate %s already exists", candidate.ID)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("CANDIDATE: failed to create candidate: %v", err)
		return err
	}
	return nil
}

func (s *DynamoCandidateStorage) Update(ctx context.Context, candidate *Candidate) error {
	item, err := attributevalue.MarshalMap(candidate)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal updated candidate: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to update candidate: %v", err)
		return err
	}
	return nil
}

func (s *DynamoCandidateStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal delete key for %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to delete candidate %s: %v", id, err)
		return err
	}
	logging.Log.Infof("CANDIDATE: deleted candidate %s", id)
	return nil
}
