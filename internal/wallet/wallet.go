package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// receiptPollInterval paces WaitMined's receipt polling.
const receiptPollInterval = 2 * time.Second

// gasLimitHeadroom is the percentage margin added over the node's estimate.
const gasLimitHeadroom = 20

// Wallet signs and submits prepared transactions as EIP-1559 dynamic-fee
// transactions. It holds one hot key; concurrency control over the nonce is
// the node's problem, not ours, because the console submits swaps one at a
// time.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	client     *ethclient.Client
}

// New creates a Wallet from a resolved hex private key, an RPC endpoint, and
// the chain id the transactions target.
func New(ctx context.Context, privateKeyHex, rpcURL string, chainID int64) (*Wallet, error) {
	pk, err := ethcrypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid private key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("wallet: dial rpc %s: %w", rpcURL, err)
	}

	return &Wallet{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey),
		chainID:    big.NewInt(chainID),
		client:     client,
	}, nil
}

// Address returns the wallet's account address.
func (w *Wallet) Address() common.Address {
	return w.address
}

// Close releases the RPC connection.
func (w *Wallet) Close() {
	w.client.Close()
}

// SendTx signs the payload as an EIP-1559 transaction and submits it. The
// returned hash can be handed to WaitMined.
func (w *Wallet) SendTx(ctx context.Context, payload domain.TxPayload) (common.Hash, error) {
	if len(payload.Data) == 0 {
		return common.Hash{}, fmt.Errorf("wallet: %w: empty call data", domain.ErrValidation)
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: pending nonce: %w", err)
	}

	tipCap, err := w.client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: suggest gas tip: %w", err)
	}

	head, err := w.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: fetch head: %w", err)
	}
	if head.BaseFee == nil {
		return common.Hash{}, errors.New("wallet: chain head has no base fee, EIP-1559 unsupported")
	}

	// feeCap = 2*baseFee + tip survives short-term base-fee growth.
	feeCap := new(big.Int).Add(
		new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
		tipCap,
	)

	value := payload.Value
	if value == nil {
		value = new(big.Int)
	}

	gasLimit, err := w.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.address,
		To:    &payload.To,
		Value: value,
		Data:  payload.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: estimate gas: %w", err)
	}
	gasLimit += gasLimit * gasLimitHeadroom / 100

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &payload.To,
		Value:     value,
		Data:      payload.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: sign tx: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("wallet: send tx: %w", err)
	}

	return signed.Hash(), nil
}

// WaitMined blocks until the transaction is mined or the context expires,
// returning the receipt. A reverted transaction is an error.
func (w *Wallet) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("wallet: tx %s reverted", hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("wallet: fetch receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wallet: wait mined %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
