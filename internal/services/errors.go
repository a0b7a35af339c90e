package services

import "errors"

var errRegisterNoUser = errors.New("sign-up returned no user")

var errCodeExhausted = errors.New("could not allocate a unique referral code")
