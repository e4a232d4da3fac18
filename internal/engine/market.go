package engine

import (
	"context"
	"fmt"

	"bonding-rewards-go/internal/curve"
	"bonding-rewards-go/internal/metrics"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

// BuyRequest spends UsdtAmount of the reserve asset on entity tokens.
// Reference makes the buy idempotent; one is generated when empty.
type BuyRequest struct {
	EntityId     string
	Buyer        string
	UsdtAmount   uint64
	MinTokensOut uint64
	Reference    string
}

// SellRequest returns TokenAmount tokens to the curve.
type SellRequest struct {
	EntityId    string
	Seller      string
	TokenAmount uint64
	MinUsdtOut  uint64
	Reference   string
}

// Buy fills the whole order at the current spot price. The buyer's reserve
// asset moves to the entity reserve, tokens are minted to the buyer, and the
// entity's supply and reserve are updated, all in one unit of work.
func (e *Engine) Buy(ctx context.Context, req BuyRequest) (*models.TradeResult, error) {
	result, err := e.buy(ctx, req)
	metrics.RecordTrade(metrics.SideBuy, req.UsdtAmount, err)
	if err != nil {
		zap.L().Warn("Buy rejected",
			zap.String("entity_id", req.EntityId),
			zap.String("buyer", req.Buyer),
			zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	zap.L().Info("Buy executed",
		zap.String("entity_id", result.EntityId),
		zap.String("buyer", result.Trader),
		zap.String("usdt_amount", human(result.UsdtAmount)),
		zap.String("tokens_out", human(result.TokenAmount)),
		zap.String("price", human(result.Price)),
		zap.String("circulating_supply", human(result.CirculatingSupply)),
		zap.String("reference", result.Reference))
	return result, nil
}

func (e *Engine) buy(ctx context.Context, req BuyRequest) (*models.TradeResult, error) {
	if err := validateIdentity(req.Buyer); err != nil {
		return nil, err
	}
	if req.UsdtAmount == 0 {
		return nil, fmt.Errorf("%w: usdt amount must be positive", ErrInvalidAmount)
	}

	ctx, reference := e.withOperation(ctx, KindBuy, req.Reference, req.EntityId, req.Buyer)
	var result *models.TradeResult

	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		entity, err := tx.GetEntity(ctx, req.EntityId)
		if err != nil {
			return err
		}

		quote, err := quoteBuy(entity, req.UsdtAmount)
		if err != nil {
			return err
		}
		if quote.TokenAmount < req.MinTokensOut {
			return fmt.Errorf("%w: %d tokens quoted, minimum %d", ErrSlippageExceeded, quote.TokenAmount, req.MinTokensOut)
		}
		if quote.TokenAmount == 0 {
			return fmt.Errorf("%w: %d buys no tokens", ErrInvalidAmount, req.UsdtAmount)
		}

		newSupply, err := checkedAdd(entity.CirculatingSupply, quote.TokenAmount)
		if err != nil || newSupply > entity.Curve.MaxSupply {
			return fmt.Errorf("%w: %d + %d exceeds %d", ErrMaxSupplyReached,
				entity.CirculatingSupply, quote.TokenAmount, entity.Curve.MaxSupply)
		}
		newReserve, err := checkedAdd(entity.ReserveBalance, req.UsdtAmount)
		if err != nil {
			return err
		}

		buyer := store.HolderAccount(req.Buyer)
		reserve := store.ReserveAccount(entity.ReserveKey())
		if err := tx.Debit(ctx, buyer, platform.ReserveAsset, req.UsdtAmount); err != nil {
			return err
		}
		if err := tx.Credit(ctx, reserve, platform.ReserveAsset, req.UsdtAmount); err != nil {
			return err
		}
		if err := tx.Mint(ctx, buyer, entity.TokenAsset(), quote.TokenAmount); err != nil {
			return err
		}

		entity.CirculatingSupply = newSupply
		entity.ReserveBalance = newReserve
		if err := entity.Validate(); err != nil {
			return err
		}
		if err := tx.PutEntity(ctx, entity); err != nil {
			return err
		}

		quote.Trader = req.Buyer
		quote.CirculatingSupply = newSupply
		quote.ReserveBalance = newReserve
		quote.Reference = reference
		quote.ExecutedAt = e.now()
		result = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Sell prices the tokens at the pre-burn spot price and pays out the
// proceeds less the 1% fee, which stays in the entity reserve.
func (e *Engine) Sell(ctx context.Context, req SellRequest) (*models.TradeResult, error) {
	result, err := e.sell(ctx, req)
	var paid uint64
	if result != nil {
		paid = result.UsdtAmount
	}
	metrics.RecordTrade(metrics.SideSell, paid, err)
	if err != nil {
		zap.L().Warn("Sell rejected",
			zap.String("entity_id", req.EntityId),
			zap.String("seller", req.Seller),
			zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	zap.L().Info("Sell executed",
		zap.String("entity_id", result.EntityId),
		zap.String("seller", result.Trader),
		zap.String("token_amount", human(result.TokenAmount)),
		zap.String("usdt_out", human(result.UsdtAmount)),
		zap.String("fee", human(result.Fee)),
		zap.String("price", human(result.Price)),
		zap.String("reserve_balance", human(result.ReserveBalance)),
		zap.String("reference", result.Reference))
	return result, nil
}

func (e *Engine) sell(ctx context.Context, req SellRequest) (*models.TradeResult, error) {
	if err := validateIdentity(req.Seller); err != nil {
		return nil, err
	}
	if req.TokenAmount == 0 {
		return nil, fmt.Errorf("%w: token amount must be positive", ErrInvalidAmount)
	}

	ctx, reference := e.withOperation(ctx, KindSell, req.Reference, req.EntityId, req.Seller)
	var result *models.TradeResult

	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		entity, err := tx.GetEntity(ctx, req.EntityId)
		if err != nil {
			return err
		}

		quote, err := quoteSell(entity, req.TokenAmount)
		if err != nil {
			return err
		}
		if quote.UsdtAmount < req.MinUsdtOut {
			return fmt.Errorf("%w: %d quoted, minimum %d", ErrSlippageExceeded, quote.UsdtAmount, req.MinUsdtOut)
		}
		if entity.ReserveBalance < quote.UsdtAmount {
			return fmt.Errorf("%w: reserve %d cannot pay %d", ErrInsufficientReserve, entity.ReserveBalance, quote.UsdtAmount)
		}
		if entity.CirculatingSupply < req.TokenAmount {
			return fmt.Errorf("%w: %d circulating, %d sold", ErrInsufficientSupply, entity.CirculatingSupply, req.TokenAmount)
		}

		seller := store.HolderAccount(req.Seller)
		reserve := store.ReserveAccount(entity.ReserveKey())
		if err := tx.Burn(ctx, seller, entity.TokenAsset(), req.TokenAmount); err != nil {
			return err
		}
		if quote.UsdtAmount > 0 {
			if err := tx.Debit(ctx, reserve, platform.ReserveAsset, quote.UsdtAmount); err != nil {
				return err
			}
			if err := tx.Credit(ctx, seller, platform.ReserveAsset, quote.UsdtAmount); err != nil {
				return err
			}
		}

		entity.CirculatingSupply -= req.TokenAmount
		entity.ReserveBalance -= quote.UsdtAmount
		if err := entity.Validate(); err != nil {
			return err
		}
		if err := tx.PutEntity(ctx, entity); err != nil {
			return err
		}

		quote.Trader = req.Seller
		quote.CirculatingSupply = entity.CirculatingSupply
		quote.ReserveBalance = entity.ReserveBalance
		quote.Reference = reference
		quote.ExecutedAt = e.now()
		result = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func quoteBuy(entity *models.Entity, usdtAmount uint64) (*models.TradeResult, error) {
	price, err := curve.Price(entity.Curve, entity.CirculatingSupply)
	if err != nil {
		return nil, err
	}
	tokensOut, err := curve.TokensOut(entity.Curve, usdtAmount, entity.CirculatingSupply)
	if err != nil {
		return nil, err
	}
	return &models.TradeResult{
		EntityId:          entity.Id,
		Side:              metrics.SideBuy,
		Price:             price,
		TokenAmount:       tokensOut,
		UsdtAmount:        usdtAmount,
		CirculatingSupply: entity.CirculatingSupply,
		ReserveBalance:    entity.ReserveBalance,
	}, nil
}

func quoteSell(entity *models.Entity, tokenAmount uint64) (*models.TradeResult, error) {
	price, err := curve.Price(entity.Curve, entity.CirculatingSupply)
	if err != nil {
		return nil, err
	}
	gross, net, err := curve.SellProceeds(entity.Curve, tokenAmount, entity.CirculatingSupply)
	if err != nil {
		return nil, err
	}
	return &models.TradeResult{
		EntityId:          entity.Id,
		Side:              metrics.SideSell,
		Price:             price,
		TokenAmount:       tokenAmount,
		UsdtAmount:        net,
		Fee:               gross - net,
		CirculatingSupply: entity.CirculatingSupply,
		ReserveBalance:    entity.ReserveBalance,
	}, nil
}

// QuoteBuy prices a buy against current state without executing it.
func (e *Engine) QuoteBuy(ctx context.Context, entityId string, usdtAmount uint64) (*models.TradeResult, error) {
	var quote *models.TradeResult
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		entity, err := tx.GetEntity(ctx, entityId)
		if err != nil {
			return err
		}
		quote, err = quoteBuy(entity, usdtAmount)
		return err
	})
	return quote, err
}

// QuoteSell prices a sell against current state without executing it.
// UsdtAmount is the net payout; Fee is what stays in the reserve.
func (e *Engine) QuoteSell(ctx context.Context, entityId string, tokenAmount uint64) (*models.TradeResult, error) {
	var quote *models.TradeResult
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		entity, err := tx.GetEntity(ctx, entityId)
		if err != nil {
			return err
		}
		quote, err = quoteSell(entity, tokenAmount)
		return err
	})
	return quote, err
}

// SpotPrice returns the current unit price of an entity's token.
func (e *Engine) SpotPrice(ctx context.Context, entityId string) (uint64, error) {
	var price uint64
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		entity, err := tx.GetEntity(ctx, entityId)
		if err != nil {
			return err
		}
		price, err = curve.Price(entity.Curve, entity.CirculatingSupply)
		return err
	})
	return price, err
}
