package orchestrator

import (
	"context"
	"log"
	"math/big"

	"assetrails/internal/apperr"
	"assetrails/internal/ledger"
	"assetrails/internal/oracle"
	"assetrails/internal/pricing"
	"assetrails/internal/proof"
)

// Config carries the workflow parameters the service cannot derive.
type Config struct {
	// DefaultFeedID is the oracle feed used for newly minted assets.
	DefaultFeedID string
	// ScaleFactor divides fiat minor units into native payment units. This
	// is a stand-in conversion for non-production networks; it is not a
	// real exchange rate.
	ScaleFactor float64
	// Precision bounds the fractional digits kept before unit conversion.
	Precision int
}

// Service sequences the proof, oracle, and ledger collaborators into the two
// public workflows. It holds no cross-request state; each call is an
// independent unit of work and each step is awaited before the next.
type Service struct {
	ledger ledger.Client
	oracle oracle.Client
	prover proof.Client
	cfg    Config
}

func NewService(led ledger.Client, ora oracle.Client, prover proof.Client, cfg Config) *Service {
	return &Service{ledger: led, oracle: ora, prover: prover, cfg: cfg}
}

// CreateAsset validates, proves issuer eligibility, posts a fresh oracle
// price, and mints the asset with the quoted fee attached. Every failure
// comes back as a classified *apperr.Error.
func (s *Service) CreateAsset(ctx context.Context, req CreateAssetRequest) (*CreateAssetResult, *apperr.Error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	proofRes, err := s.prover.GenerateProof(ctx, proof.TypeEligibility, req.IssuerAddress, proof.Input(req.Proof))
	if err != nil {
		return nil, apperr.New(apperr.KindProofGeneration, "eligibility proof generation failed").WithDetail(err.Error())
	}
	if !proofRes.Success || len(proofRes.Proof) == 0 {
		return nil, apperr.New(apperr.KindProofGeneration, "eligibility proof generation failed").WithDetail(proofRes.ErrorDetail)
	}

	updateData, err := s.oracle.GetPriceUpdateData(ctx, []string{s.cfg.DefaultFeedID})
	if err != nil {
		return nil, apperr.Wrap(err, "price oracle unavailable")
	}

	fee, err := s.ledger.GetUpdateFee(ctx, updateData)
	if err != nil {
		return nil, apperr.Wrap(err, "update fee quote failed")
	}

	receipt, err := s.ledger.MintAsset(ctx, ledger.MintParams{
		DocumentHash:    req.DocumentHash,
		TotalValue:      big.NewInt(req.TotalValue),
		FractionCount:   big.NewInt(req.FractionCount),
		MinFractionSize: big.NewInt(req.MinFractionSize),
		PriceFeedID:     ledger.EncodeBytes32(s.cfg.DefaultFeedID),
		PriceUpdateData: updateData,
		LockupPeriod:    req.LockupPeriod,
		Payment:         fee,
	})
	if err != nil {
		return nil, apperr.ClassifyRevert(err)
	}

	result := &CreateAssetResult{
		TxHash: receipt.TxHash,
		Proof:  proofRes.Proof,
	}

	// The mint succeeded even if the event is missing from the receipt;
	// tolerate its absence and leave the identifier unset.
	if id, ok := ledger.ParseAssetMinted(receipt); ok {
		result.AssetID = &id
		raw, err := s.ledger.GetPriceAtMint(ctx, id)
		if err != nil {
			return nil, apperr.Wrap(err, "mint price readback failed")
		}
		price := pricing.FromFixedPoint(raw)
		result.OraclePrice = &price
	}

	return result, nil
}

// PurchaseFraction settles a fractional purchase. Cost derives
// deterministically from metadata; the oracle read only informs the display
// price and its failure never aborts the workflow.
func (s *Service) PurchaseFraction(ctx context.Context, req PurchaseRequest) (*PurchaseResult, *apperr.Error) {
	if err := validatePurchaseRequest(req); err != nil {
		return nil, err
	}

	meta, err := s.ledger.GetAssetMetadata(ctx, req.AssetID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return nil, apperr.Newf(apperr.KindAssetNotFound, "asset %d does not exist", req.AssetID)
		}
		return nil, apperr.Wrap(err, "asset metadata lookup failed")
	}
	if !meta.Exists() {
		return nil, apperr.Newf(apperr.KindAssetNotFound, "asset %d does not exist", req.AssetID)
	}

	proofRes, err := s.prover.GenerateProof(ctx, proof.TypeEligibility, req.BuyerAddress, proof.Input(req.Proof))
	if err != nil {
		return nil, apperr.New(apperr.KindProofGeneration, "eligibility proof generation failed").WithDetail(err.Error())
	}
	if !proofRes.Success || len(proofRes.Proof) == 0 {
		return nil, apperr.New(apperr.KindProofGeneration, "eligibility proof generation failed").WithDetail(proofRes.ErrorDetail)
	}

	perFraction := pricing.PerFraction(meta.TotalValue.Int64(), meta.FractionCount.Int64())

	displayPrice := perFraction
	fromOracle := false
	if quote, err := s.oracle.GetLatestPrice(ctx, meta.FeedIDHex()); err == nil {
		displayPrice = quote.Decimal()
		fromOracle = true
	} else {
		log.Printf("asset %d: oracle read failed, using metadata price: %v", req.AssetID, err)
	}

	totalCost := pricing.TotalCost(perFraction, req.Amount)

	payment, err := pricing.ToNativePayment(totalCost, s.cfg.ScaleFactor, s.cfg.Precision)
	if err != nil {
		return nil, apperr.Wrap(err, "payment conversion failed")
	}

	receipt, err := s.ledger.PurchaseFraction(ctx, ledger.PurchaseParams{
		AssetID:   req.AssetID,
		Amount:    big.NewInt(req.Amount),
		Secret:    ledger.EncodeBytes32(req.Proof.Secret),
		Nullifier: ledger.EncodeBytes32(req.Proof.Nullifier),
		Payment:   payment,
	})
	if err != nil {
		return nil, apperr.ClassifyRevert(err)
	}

	log.Printf("asset %d: purchased %d fractions at %.2f (unit price shown %.8f, oracle=%v)",
		req.AssetID, req.Amount, totalCost, displayPrice, fromOracle)

	return &PurchaseResult{
		TxHash:           receipt.TxHash,
		TotalCost:        totalCost,
		PricePerFraction: perFraction,
		PriceFromOracle:  fromOracle,
	}, nil
}
