// api/dao/entity_dao.go
package dao

import (
	"context"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	perm_errors "github.com/bastionlabs/bastion/api/errors"
	logger "github.com/bastionlabs/bastion/api/logging"
	"github.com/bastionlabs/bastion/api/model"
)

// EntityDAO resolves ids referenced by grant data to entity records. Every
// query projects only the fields the permission views serialize.
type EntityDAO struct {
	Driver neo4j.Driver
}

func NewEntityDAO(driver neo4j.Driver) *EntityDAO {
	return &EntityDAO{Driver: driver}
}

func (dao *EntityDAO) read(work neo4j.TransactionWork) (interface{}, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()
	return session.ReadTransaction(work)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	i, _ := v.(int64)
	return int(i)
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

// UserByID returns the user or ErrUserNotFound.
func (dao *EntityDAO) UserByID(ctx context.Context, userID string) (*model.User, error) {
	start := time.Now()
	result, err := dao.read(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:User {id: $id})
        RETURN u.id, u.username, u.name, u.email, u.isActive
        `
		records, err := tx.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, perm_errors.ErrDatabaseOperation
		}
		if records.Next() {
			v := records.Record().Values
			return &model.User{
				ID:       asString(v[0]),
				Username: asString(v[1]),
				Name:     asString(v[2]),
				Email:    asString(v[3]),
				IsActive: asBool(v[4]),
			}, nil
		}
		return nil, perm_errors.ErrUserNotFound
	})
	if err != nil {
		logger.Debug("User lookup failed",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	return result.(*model.User), nil
}

// AssetsByIDs resolves an id set to assets, keyed by id. Ids absent from
// storage are simply missing from the map.
func (dao *EntityDAO) AssetsByIDs(ctx context.Context, assetIDs []string) (map[string]model.Asset, error) {
	assets := make(map[string]model.Asset, len(assetIDs))
	if len(assetIDs) == 0 {
		return assets, nil
	}
	_, err := dao.read(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:Asset)
        WHERE a.id IN $ids
        RETURN a.id, a.hostname, a.ip, a.port, a.platform
        `
		records, err := tx.Run(query, map[string]interface{}{"ids": assetIDs})
		if err != nil {
			return nil, perm_errors.ErrDatabaseOperation
		}
		for records.Next() {
			v := records.Record().Values
			asset := model.Asset{
				ID:       asString(v[0]),
				Hostname: asString(v[1]),
				IP:       asString(v[2]),
				Port:     asInt(v[3]),
				Platform: asString(v[4]),
			}
			assets[asset.ID] = asset
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// AccountsByIDs resolves an id set to accounts, keyed by id.
func (dao *EntityDAO) AccountsByIDs(ctx context.Context, accountIDs []string) (map[string]model.Account, error) {
	accounts := make(map[string]model.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return accounts, nil
	}
	_, err := dao.read(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (s:Account)
        WHERE s.id IN $ids
        RETURN s.id, s.name, s.username, s.protocol, s.priority
        `
		records, err := tx.Run(query, map[string]interface{}{"ids": accountIDs})
		if err != nil {
			return nil, perm_errors.ErrDatabaseOperation
		}
		for records.Next() {
			v := records.Record().Values
			account := model.Account{
				ID:       asString(v[0]),
				Name:     asString(v[1]),
				Username: asString(v[2]),
				Protocol: asString(v[3]),
				Priority: asInt(v[4]),
			}
			accounts[account.ID] = account
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// NodesByKeys resolves a key set to nodes, keyed by ancestry key.
func (dao *EntityDAO) NodesByKeys(ctx context.Context, keys []string) (map[string]model.Node, error) {
	nodes := make(map[string]model.Node, len(keys))
	if len(keys) == 0 {
		return nodes, nil
	}
	_, err := dao.read(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (n:Node)
        WHERE n.key IN $keys
        RETURN n.id, n.key, n.value
        `
		records, err := tx.Run(query, map[string]interface{}{"keys": keys})
		if err != nil {
			return nil, perm_errors.ErrDatabaseOperation
		}
		for records.Next() {
			v := records.Record().Values
			node := model.Node{
				ID:    asString(v[0]),
				Key:   asString(v[1]),
				Value: asString(v[2]),
			}
			nodes[node.Key] = node
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// NodeByID returns the node or ErrNodeNotFound.
func (dao *EntityDAO) NodeByID(ctx context.Context, nodeID string) (*model.Node, error) {
	result, err := dao.read(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (n:Node {id: $id})
        RETURN n.id, n.key, n.value
        `
		records, err := tx.Run(query, map[string]interface{}{"id": nodeID})
		if err != nil {
			return nil, perm_errors.ErrDatabaseOperation
		}
		if records.Next() {
			v := records.Record().Values
			return &model.Node{
				ID:    asString(v[0]),
				Key:   asString(v[1]),
				Value: asString(v[2]),
			}, nil
		}
		return nil, perm_errors.ErrNodeNotFound
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.Node), nil
}

// SearchAssetIDs narrows an id set to those whose hostname or address
// contains term, case-insensitively. The candidate set always bounds the
// query; there is no full-store scan.
func (dao *EntityDAO) SearchAssetIDs(ctx context.Context, assetIDs []string, term string) (map[string]struct{}, error) {
	matched := make(map[string]struct{}, len(assetIDs))
	if len(assetIDs) == 0 {
		return matched, nil
	}
	_, err := dao.read(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:Asset)
        WHERE a.id IN $ids
          AND (toLower(a.hostname) CONTAINS $term OR toLower(a.ip) CONTAINS $term)
        RETURN a.id
        `
		params := map[string]interface{}{
			"ids":  assetIDs,
			"term": strings.ToLower(term),
		}
		records, err := tx.Run(query, params)
		if err != nil {
			return nil, perm_errors.ErrDatabaseOperation
		}
		for records.Next() {
			matched[asString(records.Record().Values[0])] = struct{}{}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}
