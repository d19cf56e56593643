// internal/services/chain_service.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ipforge/ipforge-backend/internal/config"
	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

// TokenAttribute is a descriptive key/value pair attached to a minted token.
type TokenAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type CreateCollectionParams struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Symbol      string            `json:"symbol"`
	CoverRef    string            `json:"cover_ref"`
	Nesting     bool              `json:"nesting"`
	Limits      map[string]int64  `json:"limits,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	Permissions map[string]bool   `json:"permissions,omitempty"`
}

type CreateTokenParams struct {
	Collection  string              `json:"collection"`
	ImageRef    string              `json:"image_ref"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Attributes  []TokenAttribute    `json:"attributes"`
	Owner       models.CrossAccount `json:"owner"`
}

// ChainService is the opaque collection/token collaborator. The registry
// only depends on the documented return values; everything behind these
// calls (minting mechanics, fee sponsorship, gas) is out of its hands.
type ChainService interface {
	CreateCollection(params CreateCollectionParams) (string, error)
	CreateToken(params CreateTokenParams) (uint64, error)
	SetCollectionSponsor(collection, sponsor string) error
	ConfirmSponsorship(collection string) error
	AddCollectionAdmin(collection string, admin models.CrossAccount) error
	ChangeCollectionOwner(collection string, owner models.CrossAccount) error
	Transfer(to models.CrossAccount, amount int64) error
}

// NodeChainService simulates the chain node. Collection addresses are
// derived deterministically from the creation parameters; token ids are
// per-collection counters. Swap this for a real node client without touching
// the registry services.
type NodeChainService struct {
	config *config.Config

	mtx         sync.Mutex
	nextTokenID map[string]uint64
	sponsors    map[string]string
}

func NewNodeChainService(cfg *config.Config) *NodeChainService {
	return &NodeChainService{
		config:      cfg,
		nextTokenID: make(map[string]uint64),
		sponsors:    make(map[string]string),
	}
}

func (s *NodeChainService) CreateCollection(params CreateCollectionParams) (string, error) {
	if params.Name == "" {
		return "", fmt.Errorf("collection name is required")
	}

	seed := fmt.Sprintf("%s|%s|%s|%d", params.Name, params.Symbol, s.config.Chain.Network, time.Now().UnixNano())
	address := "0x" + utils.HashString(seed)[:40]

	logrus.WithFields(logrus.Fields{
		"collection": address,
		"name":       params.Name,
		"symbol":     params.Symbol,
		"network":    s.config.Chain.Network,
	}).Info("Collection created on chain")

	return address, nil
}

func (s *NodeChainService) CreateToken(params CreateTokenParams) (uint64, error) {
	if params.Collection == "" {
		return 0, fmt.Errorf("collection address is required")
	}

	s.mtx.Lock()
	s.nextTokenID[params.Collection]++
	tokenID := s.nextTokenID[params.Collection]
	s.mtx.Unlock()

	logrus.WithFields(logrus.Fields{
		"collection": params.Collection,
		"token_id":   tokenID,
		"name":       params.Name,
		"owner":      params.Owner.Address,
		"attributes": len(params.Attributes),
	}).Info("Token minted on chain")

	return tokenID, nil
}

func (s *NodeChainService) SetCollectionSponsor(collection, sponsor string) error {
	s.mtx.Lock()
	s.sponsors[collection] = sponsor
	s.mtx.Unlock()

	logrus.WithFields(logrus.Fields{
		"collection": collection,
		"sponsor":    sponsor,
	}).Info("Collection sponsor set")
	return nil
}

func (s *NodeChainService) ConfirmSponsorship(collection string) error {
	s.mtx.Lock()
	_, ok := s.sponsors[collection]
	s.mtx.Unlock()
	if !ok {
		return fmt.Errorf("no sponsor set for collection %s", collection)
	}

	logrus.WithField("collection", collection).Info("Collection sponsorship confirmed")
	return nil
}

func (s *NodeChainService) AddCollectionAdmin(collection string, admin models.CrossAccount) error {
	logrus.WithFields(logrus.Fields{
		"collection": collection,
		"admin":      admin.Address,
	}).Info("Collection admin added")
	return nil
}

func (s *NodeChainService) ChangeCollectionOwner(collection string, owner models.CrossAccount) error {
	logrus.WithFields(logrus.Fields{
		"collection": collection,
		"owner":      owner.Address,
	}).Info("Collection owner changed on chain")
	return nil
}

func (s *NodeChainService) Transfer(to models.CrossAccount, amount int64) error {
	if to.Address == "" {
		return fmt.Errorf("transfer recipient has no primary address")
	}
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}

	logrus.WithFields(logrus.Fields{
		"to":     to.Address,
		"amount": amount,
	}).Info("Funds transferred out")
	return nil
}
