package codec

import (
	"fmt"

	"bonding-rewards-go/internal/models"
)

func EncodePlatform(p *models.Platform) ([]byte, error) {
	w := newWriter(KindPlatform)
	w.str("authority", p.Authority, models.MaxIdentityLen)
	w.str("reserve_asset", p.ReserveAsset, models.MaxAssetLen)
	w.str("oracle", p.Oracle, models.MaxIdentityLen)
	w.u64(p.DailyRewardPool)
	w.u64(p.TotalEntities)
	w.u8(LayoutVersion)
	return w.bytes()
}

func DecodePlatform(data []byte) (*models.Platform, error) {
	r := newReader(KindPlatform, data)
	p := &models.Platform{
		Authority:       r.str("authority", models.MaxIdentityLen),
		ReserveAsset:    r.str("reserve_asset", models.MaxAssetLen),
		Oracle:          r.str("oracle", models.MaxIdentityLen),
		DailyRewardPool: r.u64(),
		TotalEntities:   r.u64(),
		Version:         r.u8(),
	}
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode platform: %w", err)
	}
	return p, nil
}

func EncodeEntity(e *models.Entity) ([]byte, error) {
	w := newWriter(KindEntity)
	w.str("id", e.Id, models.MaxEntityIdLen)
	w.str("authority", e.Authority, models.MaxIdentityLen)
	w.address(e.TokenMint)
	w.str("name", e.Name, models.MaxNameLen)
	w.str("symbol", e.Symbol, models.MaxSymbolLen)
	w.str("uri", e.Uri, models.MaxUriLen)

	w.u64(e.Curve.BasePrice)
	w.u64(e.Curve.CurveFactor)
	w.u64(e.Curve.MaxSupply)
	w.u64(e.TotalSupply)
	w.u64(e.CirculatingSupply)
	w.u64(e.ReserveBalance)

	m := e.Performance
	w.u64(m.TotalLikes)
	w.u64(m.TotalViews)
	w.u64(m.TotalComments)
	w.u64(m.TotalFollowers)
	w.time(m.LastUpdated)
	w.u64(m.DailyLikes)
	w.u64(m.DailyViews)
	w.u64(m.DailyComments)
	w.u64(m.DailyNewFollowers)

	w.u64(e.TotalRewardsEarned)
	w.time(e.LastRewardDistribution)
	return w.bytes()
}

func DecodeEntity(data []byte) (*models.Entity, error) {
	r := newReader(KindEntity, data)
	e := &models.Entity{}
	e.Id = r.str("id", models.MaxEntityIdLen)
	e.Authority = r.str("authority", models.MaxIdentityLen)
	e.TokenMint = r.address()
	e.Name = r.str("name", models.MaxNameLen)
	e.Symbol = r.str("symbol", models.MaxSymbolLen)
	e.Uri = r.str("uri", models.MaxUriLen)

	e.Curve.BasePrice = r.u64()
	e.Curve.CurveFactor = r.u64()
	e.Curve.MaxSupply = r.u64()
	e.TotalSupply = r.u64()
	e.CirculatingSupply = r.u64()
	e.ReserveBalance = r.u64()

	e.Performance.TotalLikes = r.u64()
	e.Performance.TotalViews = r.u64()
	e.Performance.TotalComments = r.u64()
	e.Performance.TotalFollowers = r.u64()
	e.Performance.LastUpdated = r.time()
	e.Performance.DailyLikes = r.u64()
	e.Performance.DailyViews = r.u64()
	e.Performance.DailyComments = r.u64()
	e.Performance.DailyNewFollowers = r.u64()

	e.TotalRewardsEarned = r.u64()
	e.LastRewardDistribution = r.time()
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	return e, nil
}

func EncodeUserRewards(u *models.UserRewards) ([]byte, error) {
	w := newWriter(KindUserRewards)
	w.str("user", u.User, models.MaxIdentityLen)
	w.address(u.Entity)
	w.u64(u.Pending)
	w.u64(u.Claimed)
	w.time(u.LastClaim)
	return w.bytes()
}

func DecodeUserRewards(data []byte) (*models.UserRewards, error) {
	r := newReader(KindUserRewards, data)
	u := &models.UserRewards{
		User:      r.str("user", models.MaxIdentityLen),
		Entity:    r.address(),
		Pending:   r.u64(),
		Claimed:   r.u64(),
		LastClaim: r.time(),
	}
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("decode user rewards: %w", err)
	}
	return u, nil
}
