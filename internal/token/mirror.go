package token

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
)

// 股权代币合约ABI定义（简化版）
const tokenABI = `[
	{
		"inputs": [
			{"name": "campaignId", "type": "uint256"},
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "mint",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// MirrorClient 链上镜像客户端
// 本地代币账本是权威状态；镜像铸币失败只影响链上副本，由任务层重试
type MirrorClient struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	tokenAddr  common.Address
	chainId    *big.Int
	abi        abi.ABI
}

// NewMirrorClient 创建链上镜像客户端
func NewMirrorClient(cfg config.ChainConfig) (*MirrorClient, error) {
	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token abi: %w", err)
	}

	chainId, err := client.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	return &MirrorClient{
		client:     client,
		privateKey: privateKey,
		tokenAddr:  common.HexToAddress(cfg.TokenAddr),
		chainId:    chainId,
		abi:        parsedABI,
	}, nil
}

// MintOnChain 向链上代币合约提交铸币交易，返回交易哈希
// 调用方保证幂等：同一条铸币记录成功后不会再次提交
func (c *MirrorClient) MintOnChain(ctx context.Context, campaignId int64, to string, amount int64) (string, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return "", fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	contract := bind.NewBoundContract(c.tokenAddr, c.abi, c.client, c.client, c.client)
	tx, err := contract.Transact(auth, "mint",
		big.NewInt(campaignId), common.HexToAddress(to), big.NewInt(amount))
	if err != nil {
		return "", fmt.Errorf("failed to send mint transaction: %w", err)
	}

	return tx.Hash().Hex(), nil
}
