// Package ledger owns the issuing identity and every interaction with the
// certificate contract: cost estimation, balance checks, nonce acquisition,
// signing, submission, confirmation waiting, and the read-only query calls.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"wipecert/internal/config"
	"wipecert/internal/domain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Backend is the subset of the ethclient surface the client needs. It exists
// so tests can substitute a fake node.
type Backend interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Client struct {
	backend      Backend
	contractABI  abi.ABI
	contract     common.Address
	key          *ecdsa.PrivateKey
	issuer       common.Address
	chainID      *big.Int
	gasMargin    uint64
	confirmAfter time.Duration
	pollEvery    time.Duration
	log          zerolog.Logger

	// mu serializes nonce acquisition through confirmation. A second
	// concurrent issuance with a stale nonce would either be rejected by the
	// node or replace the first transaction.
	mu sync.Mutex
}

// New dials the configured node and verifies connectivity before returning.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Client, error) {
	backend, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrLedgerUnavailable, cfg.RPCURL, err)
	}
	client, err := NewWithBackend(backend, cfg, log)
	if err != nil {
		return nil, err
	}
	if _, err := backend.SuggestGasPrice(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	log.Info().Str("issuer", client.issuer.Hex()).Str("contract", cfg.ContractAddress).Msg("connected to ledger")
	return client, nil
}

func NewWithBackend(backend Backend, cfg config.Config, log zerolog.Logger) (*Client, error) {
	if cfg.PrivateKeyHex == "" {
		return nil, fmt.Errorf("%w: PRIVATE_KEY is required", domain.ErrMissingCredential)
	}
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("%w: CONTRACT_ADDRESS is required", domain.ErrMissingCredential)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", domain.ErrMissingCredential, err)
	}
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	pollEvery := cfg.ConfirmPollInterval
	if pollEvery <= 0 {
		pollEvery = time.Second
	}
	confirmAfter := cfg.ConfirmTimeout
	if confirmAfter <= 0 {
		confirmAfter = 300 * time.Second
	}
	return &Client{
		backend:      backend,
		contractABI:  parsed,
		contract:     common.HexToAddress(cfg.ContractAddress),
		key:          key,
		issuer:       crypto.PubkeyToAddress(key.PublicKey),
		chainID:      big.NewInt(cfg.ChainID),
		gasMargin:    cfg.GasLimitMargin,
		confirmAfter: confirmAfter,
		pollEvery:    pollEvery,
		log:          log,
	}, nil
}

// Issuer returns the hex address of the issuing identity.
func (c *Client) Issuer() string {
	return c.issuer.Hex()
}

// IssueCertificate walks the build/estimate/afford/sequence/commit/confirm
// sequence for one entry. No funds are at risk before the submission step.
// On confirmation timeout the returned receipt still carries the transaction
// hash: the transaction may land later.
func (c *Client) IssueCertificate(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerReceipt, error) {
	data, err := c.contractABI.Pack("issueCertificate",
		entry.CertificateID,
		entry.DevicePath,
		entry.DeviceModel,
		entry.DeviceSerial,
		entry.WipeMethod,
		entry.Timestamp,
		entry.SystemHostname,
		entry.ToolVersion,
		entry.LogHash,
		entry.StorageRef,
	)
	if err != nil {
		return nil, fmt.Errorf("pack issueCertificate: %w", err)
	}

	msg := ethereum.CallMsg{From: c.issuer, To: &c.contract, Data: data}
	gasEstimate, err := c.backend.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEstimationFailed, err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: gas price: %v", domain.ErrLedgerUnavailable, err)
	}

	gasLimit := gasEstimate + c.gasMargin
	cost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	balance, err := c.backend.BalanceAt(ctx, c.issuer, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: balance: %v", domain.ErrLedgerUnavailable, err)
	}
	if balance.Cmp(cost) < 0 {
		return nil, fmt.Errorf("%w: need %s wei, have %s wei", domain.ErrInsufficientFunds, cost, balance)
	}
	c.log.Info().
		Str("certificate_id", entry.CertificateID).
		Uint64("gas_estimate", gasEstimate).
		Str("cost_wei", cost.String()).
		Msg("issuance affordable")

	c.mu.Lock()
	defer c.mu.Unlock()

	nonce, err := c.backend.PendingNonceAt(ctx, c.issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", domain.ErrLedgerUnavailable, err)
	}
	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("%w: submit: %v", domain.ErrLedgerUnavailable, err)
	}
	txHash := signed.Hash()
	c.log.Info().
		Str("certificate_id", entry.CertificateID).
		Str("tx_hash", txHash.Hex()).
		Uint64("nonce", nonce).
		Msg("issuance transaction submitted")

	receipt, err := c.waitMined(ctx, txHash)
	if err != nil {
		return &domain.LedgerReceipt{TxHash: txHash.Hex()}, err
	}
	result := &domain.LedgerReceipt{
		TxHash:      txHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return result, fmt.Errorf("%w: tx %s", domain.ErrTransactionReverted, txHash.Hex())
	}
	return result, nil
}

func (c *Client) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	deadline := time.NewTimer(c.confirmAfter)
	defer deadline.Stop()
	tick := time.NewTicker(c.pollEvery)
	defer tick.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			c.log.Warn().Err(err).Str("tx_hash", txHash.Hex()).Msg("receipt poll failed")
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: tx %s: %v", domain.ErrConfirmationTimeout, txHash.Hex(), ctx.Err())
		case <-deadline.C:
			return nil, fmt.Errorf("%w: tx %s after %s", domain.ErrConfirmationTimeout, txHash.Hex(), c.confirmAfter)
		case <-tick.C:
		}
	}
}

// VerifyCertificate is a read-only view call. An absent entry is a normal
// outcome (Exists=false), distinct from a transport failure.
func (c *Client) VerifyCertificate(ctx context.Context, certificateID string) (domain.LedgerSummary, error) {
	out, err := c.call(ctx, "verifyCertificate", certificateID)
	if err != nil {
		return domain.LedgerSummary{}, err
	}
	values, err := c.contractABI.Unpack("verifyCertificate", out)
	if err != nil {
		return domain.LedgerSummary{}, fmt.Errorf("unpack verifyCertificate: %w", err)
	}
	if len(values) != 8 {
		return domain.LedgerSummary{}, fmt.Errorf("unexpected verifyCertificate arity: %d", len(values))
	}
	issuer := *abi.ConvertType(values[6], new(common.Address)).(*common.Address)
	createdAt := abi.ConvertType(values[7], new(big.Int)).(*big.Int)
	summary := domain.LedgerSummary{
		Exists:       *abi.ConvertType(values[0], new(bool)).(*bool),
		IsValid:      *abi.ConvertType(values[1], new(bool)).(*bool),
		DeviceSerial: *abi.ConvertType(values[2], new(string)).(*string),
		WipeMethod:   *abi.ConvertType(values[3], new(string)).(*string),
		Timestamp:    *abi.ConvertType(values[4], new(string)).(*string),
		StorageRef:   *abi.ConvertType(values[5], new(string)).(*string),
		CreatedAt:    createdAt.Int64(),
	}
	if summary.Exists {
		summary.Issuer = issuer.Hex()
	}
	return summary, nil
}

type certificateTuple struct {
	CertificateId  string
	DevicePath     string
	DeviceModel    string
	DeviceSerial   string
	WipeMethod     string
	Timestamp      string
	SystemHostname string
	ToolVersion    string
	LogHash        string
	IpfsHash       string
	Issuer         common.Address
	CreatedAt      *big.Int
	IsValid        bool
}

// GetCertificateDetails returns the full ledger tuple, or domain.ErrNotFound
// when no entry exists for the identifier.
func (c *Client) GetCertificateDetails(ctx context.Context, certificateID string) (*domain.LedgerEntry, error) {
	out, err := c.call(ctx, "getCertificateDetails", certificateID)
	if err != nil {
		return nil, err
	}
	values, err := c.contractABI.Unpack("getCertificateDetails", out)
	if err != nil {
		return nil, fmt.Errorf("unpack getCertificateDetails: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected getCertificateDetails arity: %d", len(values))
	}
	tuple := *abi.ConvertType(values[0], new(certificateTuple)).(*certificateTuple)
	if tuple.CertificateId == "" {
		return nil, domain.ErrNotFound
	}
	createdAt := int64(0)
	if tuple.CreatedAt != nil {
		createdAt = tuple.CreatedAt.Int64()
	}
	return &domain.LedgerEntry{
		CertificateID:  tuple.CertificateId,
		DevicePath:     tuple.DevicePath,
		DeviceModel:    tuple.DeviceModel,
		DeviceSerial:   tuple.DeviceSerial,
		WipeMethod:     tuple.WipeMethod,
		Timestamp:      tuple.Timestamp,
		SystemHostname: tuple.SystemHostname,
		ToolVersion:    tuple.ToolVersion,
		LogHash:        tuple.LogHash,
		StorageRef:     tuple.IpfsHash,
		Issuer:         tuple.Issuer.Hex(),
		CreatedAt:      createdAt,
		IsValid:        tuple.IsValid,
	}, nil
}

func (c *Client) call(ctx context.Context, method, certificateID string) ([]byte, error) {
	data, err := c.contractABI.Pack(method, certificateID)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLedgerUnavailable, method, err)
	}
	return out, nil
}
