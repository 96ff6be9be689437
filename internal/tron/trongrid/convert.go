package trongrid

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/chain"
	"github.com/goodnatureofminers/hashroad-backend/pkg/safe"
)

// tronAddressPrefix is the version byte of mainnet account addresses.
const tronAddressPrefix = 0x41

type blockByNumRequest struct {
	Num int64 `json:"num"`
}

type blockResponse struct {
	BlockID      string            `json:"blockID"`
	BlockHeader  *blockHeader      `json:"block_header"`
	Transactions []json.RawMessage `json:"transactions"`
	Error        string            `json:"Error"`
}

type blockHeader struct {
	RawData *rawData `json:"raw_data"`
}

type rawData struct {
	Number         int64  `json:"number"`
	Timestamp      int64  `json:"timestamp"`
	WitnessAddress string `json:"witness_address"`
	ParentHash     string `json:"parentHash"`
}

func convertBlock(resp blockResponse) (*chain.Block, error) {
	var hash chainhash.Hash
	if len(resp.BlockID) != chainhash.MaxHashStringSize {
		return nil, fmt.Errorf("blockID %q: unexpected length: %w", resp.BlockID, chain.ErrMalformedResponse)
	}
	if err := chainhash.Decode(&hash, resp.BlockID); err != nil {
		return nil, fmt.Errorf("blockID %q: %w: %w", resp.BlockID, chain.ErrMalformedResponse, err)
	}
	if resp.BlockHeader == nil || resp.BlockHeader.RawData == nil {
		return nil, fmt.Errorf("block %s: missing raw_data: %w", resp.BlockID, chain.ErrMalformedResponse)
	}

	raw := resp.BlockHeader.RawData
	height, err := safe.Uint64(raw.Number)
	if err != nil {
		return nil, fmt.Errorf("block %s height: %w: %w", resp.BlockID, chain.ErrMalformedResponse, err)
	}
	txCount, err := safe.Uint32(len(resp.Transactions))
	if err != nil {
		return nil, fmt.Errorf("block %s tx count: %w: %w", resp.BlockID, chain.ErrMalformedResponse, err)
	}

	witness := ""
	if raw.WitnessAddress != "" {
		if witness, err = witnessAddress(raw.WitnessAddress); err != nil {
			return nil, fmt.Errorf("block %s witness: %w: %w", resp.BlockID, chain.ErrMalformedResponse, err)
		}
	}

	return &chain.Block{
		Height:    height,
		Hash:      strings.ToLower(resp.BlockID),
		Timestamp: time.UnixMilli(raw.Timestamp).UTC(),
		Witness:   witness,
		TxCount:   txCount,
	}, nil
}

// witnessAddress renders a hex account address in base58check form.
func witnessAddress(hexAddr string) (string, error) {
	raw, err := hex.DecodeString(hexAddr)
	if err != nil {
		return "", fmt.Errorf("decode hex address: %w", err)
	}
	if len(raw) != 21 || raw[0] != tronAddressPrefix {
		return "", fmt.Errorf("unexpected address %q", hexAddr)
	}
	return base58.CheckEncode(raw[1:], raw[0]), nil
}
