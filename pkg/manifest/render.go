package manifest

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/ptr"
)

// Render validates params for kind and returns the rendered object. params
// must be the parameter type matching kind.
func (t *Templater) Render(kind Kind, params any) (runtime.Object, error) {
	switch kind {
	case KindStorageClaim:
		p, ok := params.(StorageClaimParams)
		if !ok {
			return nil, invalid("params", "expected StorageClaimParams, got %T", params)
		}
		return t.StorageClaim(p)
	case KindLoginWorkload:
		p, ok := params.(LoginParams)
		if !ok {
			return nil, invalid("params", "expected LoginParams, got %T", params)
		}
		return t.LoginWorkload(p)
	case KindBatchJob:
		p, ok := params.(JobParams)
		if !ok {
			return nil, invalid("params", "expected JobParams, got %T", params)
		}
		return t.BatchJob(p)
	default:
		return nil, invalid("kind", "unsupported kind %q", kind)
	}
}

// StorageClaim renders the user's PersistentVolumeClaim.
func (t *Templater) StorageClaim(p StorageClaimParams) (*corev1.PersistentVolumeClaim, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	annotations := t.annotations()
	annotations[annotationStorageClass] = t.storageClass

	return &corev1.PersistentVolumeClaim{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolumeClaim"},
		ObjectMeta: metav1.ObjectMeta{
			Name: ClaimName(p.User),
			Labels: map[string]string{
				LabelUser:      p.User,
				LabelTier:      TierStorage,
				LabelManagedBy: ManagedBy,
			},
			Annotations: annotations,
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes:      []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
			StorageClassName: ptr.To(t.storageClass),
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(fmt.Sprintf("%dGi", p.SizeGi)),
				},
			},
		},
	}, nil
}

// LoginWorkload renders the user's single-replica login Deployment.
func (t *Templater) LoginWorkload(p LoginParams) (*appsv1.Deployment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	name := LoginName(p.User)
	app := LoginApp(p.User)
	volume := loginVolumeName(p.User)

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
			Labels: map[string]string{
				LabelApp:       app,
				LabelUser:      p.User,
				LabelTier:      TierFrontend,
				LabelManagedBy: ManagedBy,
			},
			Annotations: t.annotations(),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{LabelApp: app},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{
						LabelApp:  app,
						LabelUser: p.User,
						LabelTier: TierFrontend,
					},
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyAlways,
					Containers: []corev1.Container{
						{
							Name:            name,
							Image:           t.image,
							ImagePullPolicy: corev1.PullAlways,
							Ports: []corev1.ContainerPort{
								{ContainerPort: loginPort},
							},
							VolumeMounts: []corev1.VolumeMount{
								{Name: volume, MountPath: WorkdirPath},
								{Name: referenceVolumeName, MountPath: ReferencePath, ReadOnly: true},
							},
							Stdin: true,
							TTY:   true,
						},
					},
					Volumes: t.volumes(volume, p.User),
				},
			},
		},
	}, nil
}

// BatchJob renders a one-shot Job running the command under `sh -c`.
func (t *Templater) BatchJob(p JobParams) (*batchv1.Job, error) {
	if err := p.Validate(t.maxMemory); err != nil {
		return nil, err
	}

	name := JobName(p.User, p.Index)
	volume := jobVolumeName(p.User)
	jobLabels := map[string]string{
		LabelApp:     JobApp,
		LabelUser:    p.User,
		LabelTier:    TierBackend,
		LabelJobName: name,
	}
	objLabels := map[string]string{LabelManagedBy: ManagedBy}
	for k, v := range jobLabels {
		objLabels[k] = v
	}

	return &batchv1.Job{
		TypeMeta: metav1.TypeMeta{APIVersion: "batch/v1", Kind: "Job"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Labels:      objLabels,
			Annotations: t.annotations(),
		},
		Spec: batchv1.JobSpec{
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Name:   fmt.Sprintf("rfsearch-pod-%s-%s", p.User, p.Index),
					Labels: jobLabels,
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyOnFailure,
					Containers: []corev1.Container{
						{
							Name:            name,
							Image:           t.image,
							ImagePullPolicy: corev1.PullIfNotPresent,
							Command:         []string{"sh", "-c", p.Command},
							Resources: corev1.ResourceRequirements{
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    *resource.NewMilliQuantity(p.CPUMillis, resource.DecimalSI),
									corev1.ResourceMemory: resource.MustParse(p.Memory),
								},
								Limits: corev1.ResourceList{
									corev1.ResourceCPU: resource.MustParse(jobCPULimit),
								},
							},
							VolumeMounts: []corev1.VolumeMount{
								{Name: volume, MountPath: WorkdirPath},
								{Name: referenceVolumeName, MountPath: ReferencePath, ReadOnly: true},
							},
						},
					},
					Volumes: t.volumes(volume, p.User),
				},
			},
		},
	}, nil
}

// volumes returns the user's claim volume and the shared reference volume.
func (t *Templater) volumes(userVolume, user string) []corev1.Volume {
	return []corev1.Volume{
		{
			Name: userVolume,
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: ClaimName(user),
				},
			},
		},
		{
			Name: referenceVolumeName,
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: ReferenceClaimName,
					ReadOnly:  true,
				},
			},
		},
	}
}

func (t *Templater) annotations() map[string]string {
	a := map[string]string{}
	if t.invocationID != "" {
		a[AnnotationInvocation] = t.invocationID
	}
	return a
}
