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

// BallotStorage is the append-only vote ledger. CommitVote and ResetVoter are
// the only two paths that touch a user's has-voted flags together with the
// ledger, and both are transactional.
type BallotStorage interface {
	GetAll(ctx context.Context) ([]*Ballot, error)
	GetByVoter(ctx context.Context, voterID string) ([]*Ballot, error)
	CountByPeriod(ctx context.Context, periodID string) (int, error)
	// CommitVote inserts the ballot and flips the voter's flag for the
	// ballot's type in one transaction. Returns ErrBallotExists when a ballot
	// for the same (voter, period, type) already exists.
	CommitVote(ctx context.Context, ballot *Ballot) error
	// ResetVoter deletes every ballot the voter owns and clears both flags in
	// one transaction.
	ResetVoter(ctx context.Context, voterID string) error
	DeleteByVoter(ctx context.Context, voterID string) error
	DeleteByCandidate(ctx context.Context, candidateID string) error
	DeleteAll(ctx context.Context) error
}

type DynamoBallotStorage struct {
	Client         *dynamodb.Client
	TableName      string
	UsersTableName string
}

func flagAttribute(voteType string) string {
	if voteType == "MPK" {
		return "HasVotedMpk"
	}
	return "HasVotedOsis"
}

func (s *DynamoBallotStorage) GetAll(ctx context.Context) ([]*Ballot, error) {
	var ballots []*Ballot
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         &s.TableName,
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			logging.Log.Errorf("BALLOT: scan failed: %v", err)
			return nil, err
		}

		var page []*Ballot
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			logging.Log.Errorf("BALLOT: failed to unmarshal ballot list: %v", err)
			return nil, err
		}
		ballots = append(ballots, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
	return ballots, nil
}

func (s *DynamoBallotStorage) GetByVoter(ctx context.Context, voterID string) ([]*Ballot, error) {
	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :voter"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":voter": &types.AttributeValueMemberS{Value: voterID},
		},
	})
	if err != nil {
		logging.Log.Errorf("BALLOT: failed to query ballots for voter %s: %v", voterID, err)
		return nil, err
	}

	var ballots []*Ballot
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ballots); err != nil {
		logging.Log.Errorf("BALLOT: failed to unmarshal ballots for voter %s: %v", voterID, err)
		return nil, err
	}
	return ballots, nil
}

func (s *DynamoBallotStorage) CountByPeriod(ctx context.Context, periodID string) (int, error) {
	count := 0
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        &s.TableName,
			Select:           types.SelectCount,
			FilterExpression: aws.String("PeriodID = :periodId"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":periodId": &types.AttributeValueMemberS{Value: periodID},
			},
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			logging.Log.Errorf("BALLOT: count scan for period %s failed: %v", periodID, err)
			return 0, err
		}
		count += int(out.Count)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
	return count, nil
}

func (s *DynamoBallotStorage) CommitVote(ctx context.Context, ballot *Ballot) error {
	ballot.SortKey = BallotSortKey(ballot.PeriodID, ballot.Type)
	item, err := attributevalue.MarshalMap(ballot)
	if err != nil {
		logging.Log.Errorf("BALLOT: failed to marshal ballot: %v", err)
		return err
	}

	// The condition on the ballot key is the actual double-vote safety net;
	// the flag check in the voting handler is only the friendly fast path.
	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &s.TableName,
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Update: &types.Update{
					TableName: &s.UsersTableName,
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: ballot.VoterID},
					},
					UpdateExpression:    aws.String("SET #flag = :true"),
					ConditionExpression: aws.String("attribute_exists(PK)"),
					ExpressionAttributeNames: map[string]string{
						"#flag": flagAttribute(ballot.Type),
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":true": &types.AttributeValueMemberBOOL{Value: true},
					},
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			if mapped := commitCancellationError(tce.CancellationReasons); mapped != nil {
				logging.Log.Warnf("BALLOT: vote rejected for voter %s (%s): %v", ballot.VoterID, ballot.Type, mapped)
				return mapped
			}
		}
		logging.Log.Errorf("BALLOT: failed to commit vote: %v", err)
		return err
	}
	return nil
}

// commitCancellationError classifies a cancelled vote transaction by the
// index of the failed condition: item 0 is the ballot put (duplicate vote),
// item 1 the user flag update (voter row gone).
func commitCancellationError(reasons []types.CancellationReason) error {
	for i, reason := range reasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		if i == 0 {
			return ErrBallotExists
		}
		return ErrNotFound
	}
	return nil
}

func (s *DynamoBallotStorage) ResetVoter(ctx context.Context, voterID string) error {
	ballots, err := s.GetByVoter(ctx, voterID)
	if err != nil {
		return err
	}

	items := make([]types.TransactWriteItem, 0, len(ballots)+1)
	for _, b := range ballots {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: &s.TableName,
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: b.VoterID},
					"SK": &types.AttributeValueMemberS{Value: b.SortKey},
				},
			},
		})
	}
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: &s.UsersTableName,
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: voterID},
			},
			UpdateExpression:    aws.String("SET HasVotedOsis = :f, HasVotedMpk = :f"),
			ConditionExpression: aws.String("attribute_exists(PK)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":f": &types.AttributeValueMemberBOOL{Value: false},
			},
		},
	})

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			logging.Log.Warnf("BALLOT: reset transaction cancelled for voter %s: %v", voterID, err)
			return ErrNotFound
		}
		logging.Log.Errorf("BALLOT: failed to reset voter %s: %v", voterID, err)
		return err
	}
	return nil
}

func (s *DynamoBallotStorage) DeleteByVoter(ctx context.Context, voterID string) error {
	ballots, err := s.GetByVoter(ctx, voterID)
	if err != nil {
		return err
	}
	return s.batchDelete(ctx, ballots)
}

func (s *DynamoBallotStorage) DeleteByCandidate(ctx context.Context, candidateID string) error {
	all, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	var ballots []*Ballot
	for _, b := range all {
		if b.CandidateID == candidateID {
			ballots = append(ballots, b)
		}
	}
	return s.batchDelete(ctx, ballots)
}

func (s *DynamoBallotStorage) DeleteAll(ctx context.Context) error {
	all, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	return s.batchDelete(ctx, all)
}

func (s *DynamoBallotStorage) batchDelete(ctx context.Context, ballots []*Ballot) error {
	var writeRequests []types.WriteRequest
	for _, b := range ballots {
		writeRequests = append(writeRequests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: b.VoterID},
					"SK": &types.AttributeValueMemberS{Value: b.SortKey},
				},
			},
		})
	}

	for i := 0; i < len(writeRequests); i += 25 {
		end := i + 25
		if end > len(writeRequests) {
			end = len(writeRequests)
		}
		_, err := s.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.TableName: writeRequests[i:end],
			},
		})
		if err != nil {
			logging.Log.Errorf("BALLOT: batch delete failed: %v", err)
			return err
		}
		logging.Log.Infof("BALLOT: deleted batch of %d ballots", end-i)
	}
	return nil
}
