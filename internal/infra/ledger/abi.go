package ledger

// contractABI is the interface of the deployed certificate contract. Field
// order and types must match the deployed ABI exactly.
const contractABI = `[
  {
    "inputs": [
      {"name": "_certificateId", "type": "string"},
      {"name": "_devicePath", "type": "string"},
      {"name": "_deviceModel", "type": "string"},
      {"name": "_deviceSerial", "type": "string"},
      {"name": "_wipeMethod", "type": "string"},
      {"name": "_timestamp", "type": "string"},
      {"name": "_systemHostname", "type": "string"},
      {"name": "_toolVersion", "type": "string"},
      {"name": "_logHash", "type": "string"},
      {"name": "_ipfsHash", "type": "string"}
    ],
    "name": "issueCertificate",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"name": "_certificateId", "type": "string"}],
    "name": "verifyCertificate",
    "outputs": [
      {"name": "exists", "type": "bool"},
      {"name": "isValid", "type": "bool"},
      {"name": "deviceSerial", "type": "string"},
      {"name": "wipeMethod", "type": "string"},
      {"name": "timestamp", "type": "string"},
      {"name": "ipfsHash", "type": "string"},
      {"name": "issuer", "type": "address"},
      {"name": "createdAt", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"name": "_certificateId", "type": "string"}],
    "name": "getCertificateDetails",
    "outputs": [
      {
        "components": [
          {"name": "certificateId", "type": "string"},
          {"name": "devicePath", "type": "string"},
          {"name": "deviceModel", "type": "string"},
          {"name": "deviceSerial", "type": "string"},
          {"name": "wipeMethod", "type": "string"},
          {"name": "timestamp", "type": "string"},
          {"name": "systemHostname", "type": "string"},
          {"name": "toolVersion", "type": "string"},
          {"name": "logHash", "type": "string"},
          {"name": "ipfsHash", "type": "string"},
          {"name": "issuer", "type": "address"},
          {"name": "createdAt", "type": "uint256"},
          {"name": "isValid", "type": "bool"}
        ],
        "name": "",
        "type": "tuple"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`
