package contracts

// FractionalAssetABI is the ABI of the FractionalAsset contract: asset
// minting with an attached oracle price update, fractional purchase with
// eligibility-proof inputs, and the read-only metadata views the API needs.
const FractionalAssetABI = `[
  {
    "type": "function",
    "name": "getUpdateFee",
    "stateMutability": "view",
    "inputs": [{"name": "updateData", "type": "bytes[]"}],
    "outputs": [{"name": "fee", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "mintAsset",
    "stateMutability": "payable",
    "inputs": [
      {"name": "documentHash", "type": "string"},
      {"name": "totalValue", "type": "uint256"},
      {"name": "fractionCount", "type": "uint256"},
      {"name": "minFractionSize", "type": "uint256"},
      {"name": "priceFeedId", "type": "bytes32"},
      {"name": "priceUpdateData", "type": "bytes[]"},
      {"name": "lockupPeriod", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "purchaseFraction",
    "stateMutability": "payable",
    "inputs": [
      {"name": "assetId", "type": "uint256"},
      {"name": "amount", "type": "uint256"},
      {"name": "secret", "type": "bytes32"},
      {"name": "nullifier", "type": "bytes32"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getAssetMetadata",
    "stateMutability": "view",
    "inputs": [{"name": "assetId", "type": "uint256"}],
    "outputs": [
      {"name": "issuer", "type": "address"},
      {"name": "documentHash", "type": "string"},
      {"name": "totalValue", "type": "uint256"},
      {"name": "fractionCount", "type": "uint256"},
      {"name": "minFractionSize", "type": "uint256"},
      {"name": "mintedAt", "type": "uint256"},
      {"name": "oraclePriceAtMint", "type": "int64"},
      {"name": "priceFeedId", "type": "bytes32"},
      {"name": "verified", "type": "bool"}
    ]
  },
  {
    "type": "function",
    "name": "getPriceAtMint",
    "stateMutability": "view",
    "inputs": [{"name": "assetId", "type": "uint256"}],
    "outputs": [{"name": "price", "type": "int64"}]
  },
  {
    "type": "event",
    "name": "AssetMinted",
    "inputs": [
      {"name": "assetId", "type": "uint256", "indexed": true},
      {"name": "issuer", "type": "address", "indexed": true},
      {"name": "documentHash", "type": "string", "indexed": false}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "FractionPurchased",
    "inputs": [
      {"name": "assetId", "type": "uint256", "indexed": true},
      {"name": "buyer", "type": "address", "indexed": true},
      {"name": "amount", "type": "uint256", "indexed": false}
    ],
    "anonymous": false
  }
]`
