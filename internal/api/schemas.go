package api

const registerSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["full_name", "email", "phone", "password"],
  "properties": {
    "full_name": {"type": "string", "minLength": 1, "maxLength": 255},
    "email": {"type": "string", "format": "email", "minLength": 3, "maxLength": 255},
    "phone": {"type": "string", "minLength": 5, "maxLength": 20},
    "password": {"type": "string", "minLength": 6, "maxLength": 128},
    "account_type": {"type": "string", "enum": ["savings", "current"]}
  }
}`

const loginSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["email", "password"],
  "properties": {
    "email": {"type": "string", "minLength": 3, "maxLength": 255},
    "password": {"type": "string", "minLength": 1, "maxLength": 128}
  }
}`

const transferSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["recipient_account", "amount"],
  "properties": {
    "recipient_account": {"type": "string", "minLength": 1, "maxLength": 50},
    "amount": {"type": "number", "exclusiveMinimum": 0},
    "description": {"type": "string", "maxLength": 500}
  }
}`

const investmentSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["investment_type", "amount", "duration_months"],
  "properties": {
    "investment_type": {"type": "string", "enum": ["mutual_fund", "fixed_deposit", "equity", "bonds", "gold"]},
    "amount": {"type": "number", "exclusiveMinimum": 0},
    "duration_months": {"type": "integer", "minimum": 1, "maximum": 600}
  }
}`

const loanApplySchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["loan_type", "amount", "tenure_months"],
  "properties": {
    "loan_type": {"type": "string", "enum": ["personal", "home", "car", "education", "business"]},
    "amount": {"type": "number", "exclusiveMinimum": 0},
    "tenure_months": {"type": "integer", "minimum": 1, "maximum": 600},
    "purpose": {"type": "string", "maxLength": 500},
    "monthly_income": {"type": "number", "minimum": 0}
  }
}`

const chatSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["message"],
  "properties": {
    "message": {"type": "string", "minLength": 1, "maxLength": 2000},
    "category": {"type": "string", "enum": ["general", "loan", "investment"]}
  }
}`
