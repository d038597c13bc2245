// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

const registerCustomerMutation = `
mutation RegisterCustomer($input: RegisterCustomerInput!, $reCaptchaV2: ReCaptchaV2Input) {
  customer {
    registerCustomer(input: $input, reCaptchaV2: $reCaptchaV2) {
      customer {
        firstName
        lastName
      }
      errors {
        ... on EmailAlreadyInUseError {
          message
        }
        ... on AccountCreationDisabledError {
          message
        }
        ... on CustomerRegistrationError {
          message
        }
        ... on ValidationError {
          message
        }
      }
    }
  }
}`

const loginMutation = `
mutation Login($email: String!, $password: String!) {
  login(email: $email, password: $password) {
    customerAccessToken {
      value
      expiresAt
    }
    customer {
      entityId
      firstName
      lastName
    }
  }
}`

const logoutMutation = `
mutation Logout {
  logout {
    result
  }
}`

const customerSettingsQuery = `
query CustomerSettingsQuery {
  customer {
    entityId
    email
    firstName
    lastName
    company
    phone
  }
}`

const formFieldsQuery = `
query FormFieldsQuery($customerFilters: FormFieldFiltersInput, $addressFilters: FormFieldFiltersInput) {
  site {
    settings {
      formFields {
        customer(filters: $customerFilters) {
          ...FormFieldFragment
        }
        shippingAddress(filters: $addressFilters) {
          ...FormFieldFragment
        }
      }
    }
  }
}

fragment FormFieldFragment on FormField {
  __typename
  entityId
  label
  sortOrder
  isBuiltIn
  isRequired
  ... on PicklistFormField {
    options {
      entityId
      label
    }
  }
}`

const updateCustomerMutation = `
mutation UpdateCustomer($input: UpdateCustomerInput!) {
  customer {
    updateCustomer(input: $input) {
      customer {
        firstName
        lastName
      }
      errors {
        ... on UnexpectedUpdateCustomerError {
          message
        }
        ... on EmailAlreadyInUseError {
          message
        }
        ... on ValidationError {
          message
        }
      }
    }
  }
}`

const changePasswordMutation = `
mutation ChangePassword($input: ChangePasswordInput!) {
  customer {
    changePassword(input: $input) {
      errors {
        ... on ValidationError {
          message
        }
        ... on CustomerDoesNotExistError {
          message
        }
        ... on CustomerPasswordError {
          message
        }
      }
    }
  }
}`

type mutationError struct {
	Message string `json:"message"`
}

func messages(errs []mutationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}
