package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// EnsureSecret creates an Opaque secret with the given data, or updates the
// data of an existing secret with the same name. The Fleet installer uses
// this to place the sops-age key material before the first GitRepo sync.
func EnsureSecret(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	data map[string][]byte,
) error {
	secret, err := clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			newSecret := &corev1.Secret{
				ObjectMeta: metav1.ObjectMeta{
					Name:      name,
					Namespace: namespace,
				},
				Type: corev1.SecretTypeOpaque,
				Data: data,
			}

			_, err = clientset.CoreV1().Secrets(namespace).Create(
				ctx, newSecret, metav1.CreateOptions{},
			)
			if err != nil {
				return fmt.Errorf("create secret %s/%s: %w", namespace, name, err)
			}

			return nil
		}

		return fmt.Errorf("get secret %s/%s: %w", namespace, name, err)
	}

	secret.Data = data

	_, err = clientset.CoreV1().Secrets(namespace).Update(ctx, secret, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("update secret %s/%s: %w", namespace, name, err)
	}

	return nil
}
